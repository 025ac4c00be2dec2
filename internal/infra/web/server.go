package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"examvault-membership/internal/usecase"
)

// Server is the operator console API: code administration, order lifecycle
// transitions, and dashboard stats. It holds no business rules of its own;
// every route delegates to a use case.
type Server struct {
	codeUC  usecase.CodeAdminUseCase
	orderUC usecase.OrderUseCase
	apiKey  string
	auth    *AuthManager
	log     *zerolog.Logger
}

func NewServer(
	codeUC usecase.CodeAdminUseCase,
	orderUC usecase.OrderUseCase,
	apiKey string,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "OperatorAPI").Logger()
	return &Server{codeUC: codeUC, orderUC: orderUC, apiKey: apiKey, auth: auth, log: &l}
}

// Router builds the chi routing tree for the console.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.loginHandler())
	r.Post("/api/v1/logout", s.logoutHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/api/v1/codes", func(r chi.Router) {
			r.Get("/", codesListHandler(s.codeUC))
			r.Post("/", codeCreateHandler(s.codeUC))
			r.Patch("/{id}/active", codeSetActiveHandler(s.codeUC))
			r.Delete("/{id}", codeDeleteHandler(s.codeUC))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", ordersListHandler(s.orderUC))
			r.Get("/stats", orderStatsHandler(s.orderUC))
			r.Post("/{id}/approve", orderApproveHandler(s.orderUC))
			r.Post("/{id}/cancel", orderCancelHandler(s.orderUC))
		})
	})

	return r
}

// authMiddleware admits either a Bearer API key (automation) or a minted
// operator session cookie (console UI).
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("operator API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
				return
			}
			if parts[1] != s.apiKey {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if err := s.auth.VerifyRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginHandler exchanges the API key for a session cookie.
func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			APIKey string `json:"api_key"`
		}
		if err := decodeJSON(r, &req); err != nil || req.APIKey == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if s.apiKey == "" || req.APIKey != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.Mint(w); err != nil {
			s.log.Error().Err(err).Msg("minting session failed")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListenAndServe runs the console on addr until the server errors out.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("operator console listening")
	return srv.ListenAndServe()
}
