package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/usecase"
)

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type codeCreateRequest struct {
	PlanType  string     `json:"plan_type"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Code      string     `json:"code,omitempty"` // empty means server-generated
}

func codeCreateHandler(codeUC usecase.CodeAdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		plan, err := model.ParsePlanType(req.PlanType)
		if err != nil {
			http.Error(w, "Unsupported plan type", http.StatusBadRequest)
			return
		}

		code, err := codeUC.Create(r.Context(), plan, req.MaxUses, req.ExpiresAt, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrAlreadyExists):
				http.Error(w, "Code already exists", http.StatusConflict)
			default:
				http.Error(w, "Failed to create code", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, code)
	}
}

func codesListHandler(codeUC usecase.CodeAdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := codeUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list codes", http.StatusInternalServerError)
			return
		}
		if codes == nil {
			codes = []*model.InvitationCode{}
		}
		writeJSON(w, http.StatusOK, codes)
	}
}

func codeSetActiveHandler(codeUC usecase.CodeAdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Active bool `json:"active"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		err := codeUC.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to update code", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func codeDeleteHandler(codeUC usecase.CodeAdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := codeUC.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Code not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to delete code", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ordersListHandler(orderUC usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *model.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			st := model.OrderStatus(raw)
			switch st {
			case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusCancelled, model.OrderStatusExpired:
				status = &st
			default:
				http.Error(w, "Unknown status filter", http.StatusBadRequest)
				return
			}
		}

		orders, err := orderUC.List(r.Context(), status)
		if err != nil {
			http.Error(w, "Failed to list orders", http.StatusInternalServerError)
			return
		}
		if orders == nil {
			orders = []*model.VipOrder{}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func orderStatsHandler(orderUC usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := orderUC.Stats(r.Context())
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Pending           int   `json:"pending"`
			Paid              int   `json:"paid"`
			RevenueCentsTotal int64 `json:"revenue_cents_total"`
		}{stats.Pending, stats.Paid, stats.RevenueCentsTotal})
	}
}

func orderApproveHandler(orderUC usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOrderTransition(w, orderUC.Approve(r.Context(), chi.URLParam(r, "id")))
	}
}

func orderCancelHandler(orderUC usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOrderTransition(w, orderUC.Cancel(r.Context(), chi.URLParam(r, "id")))
	}
}

func writeOrderTransition(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidOrderState):
		http.Error(w, "Order is not pending", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid order id", http.StatusBadRequest)
	default:
		http.Error(w, "Failed to update order", http.StatusInternalServerError)
	}
}
