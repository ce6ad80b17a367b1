// Package models defines the domain types shared across the Civitas service:
// tickets, labels, staff, crews, and the dispatcher's decision contract.
package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketOrigin identifies the channel a ticket arrived through.
type TicketOrigin string

const (
	OriginPhone   TicketOrigin = "phone"
	OriginWebForm TicketOrigin = "web form"
	OriginText    TicketOrigin = "text"
)

// IsValid checks if the ticket origin is a known channel.
func (o TicketOrigin) IsValid() bool {
	return o == OriginPhone || o == OriginWebForm || o == OriginText
}

// TicketStatus tracks where a ticket sits in the triage lifecycle.
type TicketStatus string

const (
	StatusNew                TicketStatus = "new"
	StatusAwaitingResponse   TicketStatus = "awaiting response"
	StatusResponseInProgress TicketStatus = "response in progress"
	StatusResolved           TicketStatus = "resolved"
)

// IsValid checks if the ticket status is valid.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusAwaitingResponse, StatusResponseInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// TicketPriority is the triage priority assigned by the dispatcher.
type TicketPriority string

const (
	PriorityHigh   TicketPriority = "high"
	PriorityMedium TicketPriority = "medium"
	PriorityLow    TicketPriority = "low"
)

// IsValid checks if the priority is valid.
func (p TicketPriority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ticket is a citizen-reported service request.
type Ticket struct {
	ID         uuid.UUID      `json:"ticket_id"`
	Subject    string         `json:"ticket_subject"`
	Body       string         `json:"ticket_body"`
	Origin     TicketOrigin   `json:"origin"`
	Status     TicketStatus   `json:"status"`
	Priority   TicketPriority `json:"priority"`
	Location   *Location      `json:"location_coordinates,omitempty"`
	ReporterID *uuid.UUID     `json:"reporter_id,omitempty"`
	CreatedAt  time.Time      `json:"time_created"`
	UpdatedAt  time.Time      `json:"time_updated"`
}

// CreateTicketRequest contains fields for creating a new ticket.
type CreateTicketRequest struct {
	Subject    string       `json:"ticket_subject" binding:"required"`
	Body       string       `json:"ticket_body" binding:"required"`
	Origin     TicketOrigin `json:"origin" binding:"required"`
	Location   *Location    `json:"location_coordinates,omitempty"`
	ReporterID *uuid.UUID   `json:"reporter_id,omitempty"`
}

// Comment is a reply attached to a ticket. Citizen-facing comments written
// by the dispatcher carry a nil AuthorID.
type Comment struct {
	ID        uuid.UUID  `json:"comment_id"`
	TicketID  uuid.UUID  `json:"ticket_id"`
	Body      string     `json:"comment_body"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	CreatedAt time.Time  `json:"time_created"`
}
