package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civitas-project/civitas/pkg/models"
)

// TicketService manages ticket lifecycle: intake, lookup, and applying
// dispatcher decisions.
type TicketService struct {
	store *Store
}

// NewTicketService creates a ticket service over the store.
func NewTicketService(store *Store) *TicketService {
	return &TicketService{store: store}
}

// CreateTicket records a new citizen-reported ticket.
func (s *TicketService) CreateTicket(ctx context.Context, req models.CreateTicketRequest) (*models.Ticket, error) {
	if !req.Origin.IsValid() {
		return nil, NewValidationError("origin", fmt.Sprintf("unknown origin %q", req.Origin))
	}

	var ticket models.Ticket
	err := s.store.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO tickets (ticket_subject, ticket_body, origin, location_coordinates, reporter_id)
			VALUES ($1, $2, $3, `+pointExpr("$4", "$5")+`, $6)
			RETURNING ticket_id, ticket_subject, ticket_body, origin, status, priority,
			          ST_Y(location_coordinates), ST_X(location_coordinates),
			          reporter_id, time_created, time_updated`,
			req.Subject, req.Body, req.Origin, lngArg(req.Location), latArg(req.Location), req.ReporterID)
		return scanTicket(row, &ticket)
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicket fetches a ticket by ID.
func (s *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.store.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT ticket_id, ticket_subject, ticket_body, origin, status, priority,
			       ST_Y(location_coordinates), ST_X(location_coordinates),
			       reporter_id, time_created, time_updated
			FROM tickets WHERE ticket_id = $1`, id)
		if err := scanTicket(row, &ticket); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("ticket %s: %w", id, ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets returns tickets in reverse creation order, optionally
// filtered by status.
func (s *TicketService) ListTickets(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	if status != "" && !status.IsValid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	var tickets []models.Ticket
	err := s.store.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT ticket_id, ticket_subject, ticket_body, origin, status, priority,
			       ST_Y(location_coordinates), ST_X(location_coordinates),
			       reporter_id, time_created, time_updated
			FROM tickets
			WHERE $1 = '' OR status = $1
			ORDER BY time_created DESC`, string(status))
		if err != nil {
			return fmt.Errorf("failed to query tickets: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Ticket
			if err := scanTicket(rows, &t); err != nil {
				return err
			}
			tickets = append(tickets, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ApplyDecision writes a dispatcher decision onto a ticket: status and
// priority update, assignee and label links, and the citizen-facing
// comment, all in one transaction. A failure anywhere leaves the ticket
// untouched.
func (s *TicketService) ApplyDecision(ctx context.Context, ticketID uuid.UUID, decision *models.DispatchDecision) error {
	status := models.TicketStatus(decision.Status)
	if !status.IsValid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", decision.Status))
	}
	priority := models.TicketPriority(decision.Priority)
	if !priority.IsValid() {
		return NewValidationError("priority", fmt.Sprintf("unknown priority %q", decision.Priority))
	}
	userIDs, err := parseIDList("user_assignees", decision.UserAssignees)
	if err != nil {
		return err
	}
	crewIDs, err := parseIDList("crew_assignees", decision.CrewAssignees)
	if err != nil {
		return err
	}
	labelIDs, err := parseIDList("labels", decision.Labels)
	if err != nil {
		return err
	}

	return s.store.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE tickets SET status = $1, priority = $2, time_updated = now()
			WHERE ticket_id = $3`, status, priority, ticketID)
		if err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("ticket %s: %w", ticketID, ErrNotFound)
		}

		for _, userID := range userIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO ticket_user_assignees (ticket_id, user_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, ticketID, userID); err != nil {
				return fmt.Errorf("failed to assign user %s: %w", userID, err)
			}
		}
		for _, crewID := range crewIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO ticket_crew_assignees (ticket_id, team_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, ticketID, crewID); err != nil {
				return fmt.Errorf("failed to assign crew %s: %w", crewID, err)
			}
		}

		for _, labelID := range labelIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO ticket_labels (ticket_id, label_id)
				SELECT $1, label_id FROM labels WHERE label_id = $2
				ON CONFLICT DO NOTHING`, ticketID, labelID); err != nil {
				return fmt.Errorf("failed to attach label %s: %w", labelID, err)
			}
		}

		if body := strings.TrimSpace(decision.Comment.CommentBody); body != "" {
			if _, err := tx.Exec(ctx, `
				INSERT INTO comments (ticket_id, comment_body)
				VALUES ($1, $2)`, ticketID, body); err != nil {
				return fmt.Errorf("failed to insert comment: %w", err)
			}
		}
		return nil
	})
}

func parseIDList(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, NewValidationError(field, fmt.Sprintf("invalid id %q", s))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// scanTicket reads one ticket row including its nullable location pair.
func scanTicket(row pgx.Row, t *models.Ticket) error {
	var lat, lng *float64
	if err := row.Scan(&t.ID, &t.Subject, &t.Body, &t.Origin, &t.Status, &t.Priority,
		&lat, &lng, &t.ReporterID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to scan ticket: %w", err)
	}
	if lat != nil && lng != nil {
		t.Location = &models.Location{Lat: *lat, Lng: *lng}
	}
	return nil
}

// pointExpr builds a PostGIS point expression from lng/lat placeholders,
// collapsing to NULL when either is absent.
func pointExpr(lngPh, latPh string) string {
	return "CASE WHEN " + lngPh + "::float8 IS NULL THEN NULL " +
		"ELSE ST_SetSRID(ST_MakePoint(" + lngPh + "::float8, " + latPh + "::float8), 4326) END"
}

func latArg(loc *models.Location) *float64 {
	if loc == nil {
		return nil
	}
	return &loc.Lat
}

func lngArg(loc *models.Location) *float64 {
	if loc == nil {
		return nil
	}
	return &loc.Lng
}
