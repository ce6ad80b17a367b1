package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-project/civitas/pkg/models"
)

// Validation happens before any transaction is opened, so these tests run
// against a store with no live pool.

func TestCreateTicket_RejectsUnknownOrigin(t *testing.T) {
	svc := NewTicketService(NewStore(nil))

	_, err := svc.CreateTicket(context.Background(), models.CreateTicketRequest{
		Subject: "s", Body: "b", Origin: "smoke signal",
	})
	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
	assert.Equal(t, "origin", validErr.Field)
}

func TestListTickets_RejectsUnknownStatus(t *testing.T) {
	svc := NewTicketService(NewStore(nil))

	_, err := svc.ListTickets(context.Background(), "lost")
	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
	assert.Equal(t, "status", validErr.Field)
}

func TestApplyDecision_RejectsInvalidFields(t *testing.T) {
	svc := NewTicketService(NewStore(nil))
	id := uuid.New()

	valid := func() *models.DispatchDecision {
		return &models.DispatchDecision{
			Status:        string(models.StatusAwaitingResponse),
			Priority:      string(models.PriorityLow),
			UserAssignees: []string{},
			CrewAssignees: []string{},
			Labels:        []string{},
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.DispatchDecision)
		field  string
	}{
		{"bad status", func(d *models.DispatchDecision) { d.Status = "closed" }, "status"},
		{"bad priority", func(d *models.DispatchDecision) { d.Priority = "urgent" }, "priority"},
		{"bad user id", func(d *models.DispatchDecision) { d.UserAssignees = []string{"nope"} }, "user_assignees"},
		{"bad crew id", func(d *models.DispatchDecision) { d.CrewAssignees = []string{"nope"} }, "crew_assignees"},
		{"bad label id", func(d *models.DispatchDecision) { d.Labels = []string{"Pothole"} }, "labels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := valid()
			tt.mutate(decision)
			err := svc.ApplyDecision(context.Background(), id, decision)
			var validErr *ValidationError
			require.ErrorAs(t, err, &validErr)
			assert.Equal(t, tt.field, validErr.Field)
		})
	}
}

func TestParseIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids, err := parseIDList("user_assignees", []string{a.String(), b.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	ids, err = parseIDList("user_assignees", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(NewValidationError("f", "m")))
}
