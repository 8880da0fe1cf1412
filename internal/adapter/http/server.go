package adapthttp

import (
	"net/http"

	"github.com/rs/zerolog"

	"moods/internal/app"
	"moods/internal/metrics"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	moods       *app.MoodProvider
	analytics   *app.AnalyticsService
	authSvc     *app.AuthService
	oidcConfig  *OIDCConfig
	metrics     *metrics.Metrics
	log         zerolog.Logger
	webDir      string
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(moods *app.MoodProvider, analytics *app.AnalyticsService, authSvc *app.AuthService, webDir string) *Server {
	return &Server{
		moods:      moods,
		analytics:  analytics,
		authSvc:    authSvc,
		oidcConfig: &OIDCConfig{},
		log:        zerolog.Nop(),
		webDir:     webDir,
	}
}

// WithLogger sets the logger used for request logging.
func (s *Server) WithLogger(log zerolog.Logger) *Server {
	s.log = log.With().Str("component", "http").Logger()
	return s
}

// WithMetrics records request counts and serves /metrics.
func (s *Server) WithMetrics(m *metrics.Metrics) *Server {
	s.metrics = m
	return s
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	if cfg != nil {
		s.oidcConfig = cfg
	}
	return s
}

// WithoutAuth disables the access gate.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/sso/login", s.handleSSOLogin)
	api.HandleFunc("/sso/callback", s.handleSSOCallback)

	api.Handle("/moods", s.authMiddleware(http.HandlerFunc(s.handleMoods)))
	api.Handle("/moods/{timestamp}", s.authMiddleware(http.HandlerFunc(s.handleMoodByTimestamp)))
	api.Handle("/analytics", s.authMiddleware(http.HandlerFunc(s.handleAnalytics)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metrics != nil {
		root.Handle("/metrics", s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
