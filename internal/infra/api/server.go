package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/infra/logging"
	"examvault-membership/internal/usecase"
)

// userIDHeader carries the authenticated user id. Authentication itself is
// the storefront's concern; this service trusts the header set by the
// fronting proxy.
const userIDHeader = "X-User-ID"

// Server is the member-facing API: entitlement checks, code redemption,
// order creation and history.
type Server struct {
	entitlementUC usecase.EntitlementUseCase
	redemptionUC  usecase.RedemptionUseCase
	orderUC       usecase.OrderUseCase
	log           *zerolog.Logger
}

func NewServer(
	entitlementUC usecase.EntitlementUseCase,
	redemptionUC usecase.RedemptionUseCase,
	orderUC usecase.OrderUseCase,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "MemberAPI").Logger()
	return &Server{entitlementUC: entitlementUC, redemptionUC: redemptionUC, orderUC: orderUC, log: &l}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/api/v1/entitlement", s.entitlementHandler)
		r.Post("/api/v1/codes/redeem", s.redeemHandler)
		r.Post("/api/v1/orders", s.orderCreateHandler)
		r.Get("/api/v1/orders", s.orderHistoryHandler)
	})

	return r
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userIDHeader)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), userID)))
	})
}

func (s *Server) entitlementHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	entitled, err := s.entitlementUC.IsEntitled(r.Context(), userID)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("entitlement check failed")
		http.Error(w, "Failed to check entitlement", http.StatusInternalServerError)
		return
	}

	resp := struct {
		Entitled     bool       `json:"entitled"`
		VIPExpiresAt *time.Time `json:"vip_expires_at,omitempty"`
	}{Entitled: entitled}
	if p, err := s.entitlementUC.Profile(r.Context(), userID); err == nil {
		resp.VIPExpiresAt = p.VIPExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) redeemHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expiry, err := s.redemptionUC.Redeem(r.Context(), req.Code, userID)
	if err != nil {
		writeRedemptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		VIPExpiresAt time.Time `json:"vip_expires_at"`
	}{expiry})
}

// writeRedemptionError maps each business failure to a distinct code so the
// storefront can show a specific message.
func writeRedemptionError(w http.ResponseWriter, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrCodeNotFound):
		status, code = http.StatusNotFound, "code_not_found"
	case errors.Is(err, domain.ErrCodeExpired):
		status, code = http.StatusGone, "code_expired"
	case errors.Is(err, domain.ErrCodeExhausted):
		status, code = http.StatusConflict, "code_exhausted"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		status, code = http.StatusConflict, "code_already_used"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{code})
}

func (s *Server) orderCreateHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	var req struct {
		PlanType string `json:"plan_type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	plan, err := model.ParsePlanType(req.PlanType)
	if err != nil {
		http.Error(w, "Unsupported plan type", http.StatusBadRequest)
		return
	}

	o, err := s.orderUC.Create(r.Context(), userID, plan)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("order creation failed")
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) orderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	orders, err := s.orderUC.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []*model.VipOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the member API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("member API listening")
	return srv.ListenAndServe()
}
