package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kongor-lobby/masterserver/internal/db"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
	"github.com/kongor-lobby/masterserver/internal/util"
)

// Server is the Ops API's HTTP server.
type Server struct {
	addr       string
	directory  *lobby.Directory
	sessions   *session.Registry
	conns      *network.Registry
	moderation *db.ModerationStore
	eventBus   *events.EventBus

	certFile, keyFile string

	httpServer *http.Server
	router     *gin.Engine
}

// NewServer creates an Ops API server. apiKey, if non-empty, is the bearer
// token operators must present; moderation may be nil to skip RBAC and rely
// on the bearer token alone.
func NewServer(addr, apiKey string, directory *lobby.Directory, sessions *session.Registry,
	conns *network.Registry, moderation *db.ModerationStore, eventBus *events.EventBus) *Server {

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		addr:       addr,
		directory:  directory,
		sessions:   sessions,
		conns:      conns,
		moderation: moderation,
		eventBus:   eventBus,
	}
	s.router = s.buildRouter(apiKey)
	return s
}

func (s *Server) buildRouter(apiKey string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Operator-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	auth := &authMiddleware{apiKey: apiKey, moderation: s.moderation}

	public := router.Group("/api/public")
	{
		public.GET("/ping", s.handlePing)
	}

	ops := router.Group("/api/ops")
	ops.Use(auth.requirePermission(PermMonitor))
	{
		ops.GET("/channels", s.handleChannels)
		ops.GET("/rooms/:serverIdx/:channelIdx", s.handleRooms)
		ops.GET("/sessions", s.handleSessions)
	}

	control := router.Group("/api/ops")
	control.Use(auth.requirePermission(PermControl))
	{
		control.POST("/sessions/:userId/kick", s.handleKick)
	}

	return router
}

// UseTLS configures the certificate/key pair Start serves with. If either
// path is empty when Start runs, a self-signed certificate is generated
// on the fly (development/LAN deployments, not a publicly trusted cert).
func (s *Server) UseTLS(certFile, keyFile string) {
	s.certFile, s.keyFile = certFile, keyFile
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	certFile, keyFile, err := s.resolveTLSFiles()
	if err != nil {
		return fmt.Errorf("ops api tls: %w", err)
	}

	log.Info().Str("addr", s.addr).Msg("ops api listening")
	err = s.httpServer.ListenAndServeTLS(certFile, keyFile)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ops api: %w", err)
	}
	return nil
}

// resolveTLSFiles returns the configured cert/key pair, generating a
// self-signed one alongside the moderation store's data directory if none
// was configured.
func (s *Server) resolveTLSFiles() (string, string, error) {
	if s.certFile != "" && s.keyFile != "" {
		return s.certFile, s.keyFile, nil
	}

	dir := filepath.Join("data", "ops-api-tls")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	if _, err := os.Stat(certFile); err == nil {
		if _, err := os.Stat(keyFile); err == nil {
			return certFile, keyFile, nil
		}
	}
	if err := util.GenerateSelfSignedCert(certFile, keyFile); err != nil {
		return "", "", err
	}
	return certFile, keyFile, nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
