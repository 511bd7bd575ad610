package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/api/handlers"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/api/middleware"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port           int
	TLS            *TLSConfig
	SessionManager *sessions.SessionManager
	SyncManager    *gamesync.Manager
	Repository     repositories.Repository
}

// NewRouter builds the API router. Exposed separately from the server so
// tests can mount it directly.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware()

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(authMiddleware)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/health", handlers.HandleHealth()).Methods(http.MethodGet)

	apiRouter.HandleFunc("/player-sessions/generate", handlers.HandleGeneratePins(opts.SessionManager)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/player-sessions/{pin}", handlers.HandleGetSession(opts.SessionManager)).Methods(http.MethodGet)

	apiRouter.HandleFunc("/game-sync/update", handlers.HandleUpdateGameState(opts.SyncManager)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/game-sync/state", handlers.HandleGetGameState(opts.SyncManager)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/game-sync/player/{pin}", handlers.HandleGetPlayerData(opts.SessionManager, opts.SyncManager)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/game-sync/player/{pin}", handlers.HandleUpdatePlayerStats(opts.SessionManager, opts.SyncManager)).Methods(http.MethodPost)

	if opts.Repository != nil {
		apiRouter.HandleFunc("/campaigns", handlers.HandleListCampaigns(opts.Repository)).Methods(http.MethodGet)
		apiRouter.HandleFunc("/campaigns", handlers.HandleCreateCampaign(opts.Repository)).Methods(http.MethodPost)
		apiRouter.HandleFunc("/campaigns/{id}", handlers.HandleGetCampaign(opts.Repository)).Methods(http.MethodGet)
		apiRouter.HandleFunc("/campaigns/{id}", handlers.HandleUpdateCampaign(opts.Repository)).Methods(http.MethodPut)
		apiRouter.HandleFunc("/campaigns/{id}", handlers.HandleDeleteCampaign(opts.Repository)).Methods(http.MethodDelete)
		apiRouter.HandleFunc("/campaigns/{id}/save-game", handlers.HandleSaveGame(opts.Repository)).Methods(http.MethodPost)
		apiRouter.HandleFunc("/campaigns/{id}/game", handlers.HandleLoadGame(opts.Repository)).Methods(http.MethodGet)
		apiRouter.HandleFunc("/scenarios", handlers.HandleListScenarios(opts.Repository)).Methods(http.MethodGet)
		apiRouter.HandleFunc("/elements", handlers.HandleListElements(opts.Repository)).Methods(http.MethodGet)
	}

	return router
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
