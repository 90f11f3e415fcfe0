// internal/httpserver/server.go
//
// HTTP server wiring for the Kelime backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/metrics", "/words/stats", "/ws/scores".
//   - Game endpoints (optional auth): /game/*.
//   - Leaderboards (public) and today's result (require auth).
//   - Auth endpoints: /auth/*.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The WebSocket route sits outside the timeout group; it is long-lived by nature.
//   - Errors are JSON: {"error": "<code>", "message": "<human readable>"}.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/addkelime/kelime-server/internal/auth"
	"github.com/addkelime/kelime-server/internal/daily"
	"github.com/addkelime/kelime-server/internal/metrics"
	"github.com/addkelime/kelime-server/internal/realtime"
	"github.com/addkelime/kelime-server/internal/scoring"
	"github.com/addkelime/kelime-server/internal/store"
	"github.com/addkelime/kelime-server/internal/words"
)

// Deps are the collaborators the handlers use.
type Deps struct {
	Dict      *words.Dictionary
	Clock     daily.Clock
	Sessions  store.Store
	Results   *daily.Store
	Scores    *scoring.Service
	Auth      *auth.Service
	Hub       *realtime.Hub
	Publisher realtime.Publisher
	Metrics   *metrics.Metrics
	Origins   []string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// Server bundles the router and its dependencies.
type Server struct {
	r *chi.Mux
	Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Timeout == 0 {
		d.Timeout = 15 * time.Second
	}
	if d.Publisher == nil && d.Hub != nil {
		d.Publisher = d.Hub
	}
	s := &Server{r: chi.NewRouter(), Deps: d}

	// --- middleware ---
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(d.Logger))
	s.r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "kelime",
			"endpoints": []string{"/health", "POST /game/new", "/leaderboard/*", "/auth/*", "/ws/scores"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "today": s.Clock.Today()})
	})
	if s.Metrics != nil {
		s.r.Handle("/metrics", s.Metrics.Handler())
	}
	if s.Hub != nil {
		s.r.Get("/ws/scores", s.Hub.ServeWS)
	}

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(d.Timeout))
		r.Use(jsonContentType)

		r.Get("/words/stats", s.handleWordStats)

		// Game + leaderboards: OPTIONAL AUTH (guests can play)
		r.Group(func(r chi.Router) {
			r.Use(s.Auth.Optional)
			s.mountGame(r)
			s.mountLeaderboard(r)
		})

		s.mountAuth(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.r }

func accessLog(r *http.Request, status, size int, dur time.Duration) {
	ev := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", dur).
		Msg("request")
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origins. A "*" entry
// opens the API to any origin, but without credentials.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if ok, exact := s.originAllowed(origin); ok {
				w.Header().Add("Vary", "Origin")
				if exact {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// originAllowed reports whether origin may call the API, and whether it was
// listed by name rather than matched by "*".
func (s *Server) originAllowed(origin string) (ok, exact bool) {
	for _, o := range s.Origins {
		switch o {
		case origin:
			return true, true
		case "*":
			ok = true
		}
	}
	return ok, false
}

// ------------------------------ helpers ------------------------------------

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// decodeJSON reads a JSON body of at most 64 KiB. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return false
	}
	return true
}

// queryInt parses an integer query parameter, returning def when absent or invalid.
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	stats := s.Dict.Stats()
	out := make(map[string]int, len(stats))
	for mode, n := range stats {
		out[strconv.Itoa(mode)] = n
	}
	writeJSON(w, http.StatusOK, out)
}
