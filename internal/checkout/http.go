package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

type Server struct {
	Svc      *Service
	Validate *validator.Validate
	Log      *zap.Logger
}

type checkoutReq struct {
	CartID       string `json:"cart_id" validate:"required"`
	DiscountCode string `json:"discount_code" validate:"omitempty,min=1"`
}

func (s *Server) Register(r chi.Router) {
	r.Post("/checkout", s.checkout)
	r.Get("/orders", s.listOrders)
	r.Get("/orders/{id}", s.getOrder)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if err := s.Validate.Struct(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "cart_id required", map[string]any{"reason": err.Error()})
		return
	}

	o, err := s.Svc.Checkout(req.CartID, req.DiscountCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Svc.ListOrders())
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := s.Svc.GetOrder(id)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "Order not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case ErrCartNotFound:
		kit.WriteError(w, r, http.StatusNotFound, "Cart not found", nil)
	case ErrCartEmpty:
		kit.WriteError(w, r, http.StatusBadRequest, "Cart is empty", nil)
	case ErrInvalidCode:
		kit.WriteError(w, r, http.StatusBadRequest, "Invalid discount code", nil)
	case ErrCodeUsed:
		kit.WriteError(w, r, http.StatusBadRequest, "Discount code already used", nil)
	default:
		if s.Log != nil {
			s.Log.Error("checkout failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
