package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pairchat/internal/config"
	"github.com/vovakirdan/pairchat/internal/core"
	"github.com/vovakirdan/pairchat/internal/store"
)

// NewServer builds the admin HTTP server: health, read-only registry and audit
// views, and the WebSocket bridge into the line protocol.
// events may be nil when auditing is disabled.
func NewServer(registry *core.Registry, events store.EventStore, conns ConnServer, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	admin := NewAdminHandlers(registry, events, logger)

	router.GET("/health", healthHandler)
	router.GET("/api/users", admin.ListUsers)
	router.GET("/api/events", admin.ListEvents)
	router.GET("/ws", gin.WrapH(NewWSHandler(conns, int64(cfg.MaxLineBytes), logger)))

	return &stdhttp.Server{
		Addr:              cfg.AdminAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.Writer.WriteHeader(stdhttp.StatusOK)
	_, _ = fmt.Fprint(c.Writer, "ok")
}
