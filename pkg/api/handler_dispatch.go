package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitas-project/civitas/pkg/agent"
)

// DispatchTicket handles POST /dispatcher/:ticket_id/dispatch. It runs
// the dispatcher agent over the ticket and returns the decision without
// applying it; the assignment endpoint persists decisions.
func (s *Server) DispatchTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("ticket_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return
	}

	ticket, err := s.tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Running dispatcher", "ticket_id", id, "subject", ticket.Subject)

	decision, err := s.dispatcher.Dispatch(c.Request.Context(), agent.FactsFromTicket(ticket))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticket_id": id,
		"decision":  decision,
	})
}
