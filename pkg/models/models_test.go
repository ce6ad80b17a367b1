package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumValidation(t *testing.T) {
	assert.True(t, OriginPhone.IsValid())
	assert.True(t, OriginWebForm.IsValid())
	assert.False(t, TicketOrigin("email").IsValid())

	assert.True(t, StatusAwaitingResponse.IsValid())
	assert.False(t, TicketStatus("closed").IsValid())

	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, TicketPriority("urgent").IsValid())

	assert.True(t, CrewTypeSanitation.IsValid())
	assert.False(t, CrewType("submarine crew").IsValid())
}

func TestCrewTypesCoversEveryValidType(t *testing.T) {
	types := CrewTypes()
	assert.Len(t, types, 6)
	for _, ct := range types {
		assert.True(t, ct.IsValid(), "crew type %q", ct)
	}
}
