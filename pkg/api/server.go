// Package api exposes the HTTP surface of the Civitas service: ticket
// intake, directory search, and dispatcher runs.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitas-project/civitas/pkg/agent"
	"github.com/civitas-project/civitas/pkg/models"
)

// DirectoryFinder answers label, staff, and crew lookups.
type DirectoryFinder interface {
	SearchLabels(ctx context.Context, search string) ([]models.Label, error)
	SearchStaff(ctx context.Context, search string) ([]models.StaffMember, error)
	NearestCrews(ctx context.Context, lat, lng float64, crewType models.CrewType) ([]models.CrewWithDistance, error)
}

// TicketStore manages ticket lifecycle.
type TicketStore interface {
	CreateTicket(ctx context.Context, req models.CreateTicketRequest) (*models.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	ListTickets(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error)
	ApplyDecision(ctx context.Context, ticketID uuid.UUID, decision *models.DispatchDecision) error
}

// DispatchRunner drives the dispatcher agent over one ticket.
type DispatchRunner interface {
	Dispatch(ctx context.Context, facts agent.TicketFacts) (*models.DispatchDecision, error)
}

// HealthChecker reports backing-store connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	directory  DirectoryFinder
	tickets    TicketStore
	dispatcher DispatchRunner
	health     HealthChecker
}

// NewServer creates an API server over the given collaborators.
func NewServer(directory DirectoryFinder, tickets TicketStore, dispatcher DispatchRunner, health HealthChecker) *Server {
	return &Server{
		directory:  directory,
		tickets:    tickets,
		dispatcher: dispatcher,
		health:     health,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsCfg.AllowOrigins = allowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsCfg))

	router.GET("/health", s.Health)
	router.GET("/labels", s.SearchLabels)
	router.GET("/users", s.SearchUsers)
	router.GET("/crews/nearest", s.NearestCrews)
	router.GET("/tickets", s.ListTickets)
	router.GET("/tickets/:id", s.GetTicket)
	router.POST("/tickets", s.CreateTicket)
	router.POST("/tickets/:id/assignment", s.ApplyAssignment)
	router.POST("/dispatcher/:ticket_id/dispatch", s.DispatchTicket)

	return router
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, port string, allowedOrigins []string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.Router(allowedOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
