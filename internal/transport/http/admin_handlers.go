package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// AdminHandlers exposes read-only views of the registry and the audit log.
type AdminHandlers struct {
	registry *core.Registry
	events   store.EventStore
	log      *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance. events may be nil.
func NewAdminHandlers(registry *core.Registry, events store.EventStore, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		registry: registry,
		events:   events,
		log:      logger,
	}
}

// ListUsers returns every logged-in user and its chat partner.
// GET /api/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, usersToResponse(h.registry.Snapshot()))
}

// ListEvents returns recent session events, newest first.
// GET /api/events?limit=N
func (h *AdminHandlers) ListEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "audit log disabled"})
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.events.ListEvents(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Int("limit", limit).Msg("failed to list events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, eventsToResponse(events))
}
