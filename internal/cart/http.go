package cart

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"MiniShop/internal/store"
	"MiniShop/pkg/kit"
)

type Server struct {
	Svc      *Service
	Validate *validator.Validate
	Log      *zap.Logger
}

type cartResponse struct {
	Message string     `json:"message"`
	Cart    store.Cart `json:"cart"`
}

type addItemReq struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type updateQtyReq struct {
	Quantity int `json:"quantity"`
}

func (s *Server) Register(r chi.Router) {
	r.Post("/cart", s.create)
	r.Get("/cart/{id}", s.get)
	r.Post("/cart/{id}/items", s.addItem)
	r.Put("/cart/{id}/items/{productID}", s.updateQuantity)
	r.Delete("/cart/{id}/items/{productID}", s.removeItem)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Svc.CreateCart())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	c, err := s.Svc.GetCart(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if err := s.Validate.Struct(req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid item", map[string]any{"reason": err.Error()})
		return
	}

	c, err := s.Svc.AddItem(chi.URLParam(r, "id"), req.ProductID, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResponse{Message: "Item added to cart", Cart: c})
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	qty, err := quantityParam(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "quantity required", nil)
		return
	}

	c, err := s.Svc.UpdateQuantity(chi.URLParam(r, "id"), chi.URLParam(r, "productID"), qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResponse{Message: "Quantity updated", Cart: c})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	c, err := s.Svc.RemoveItem(chi.URLParam(r, "id"), chi.URLParam(r, "productID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResponse{Message: "Item removed from cart", Cart: c})
}

// quantityParam reads the new quantity from the ?quantity= query parameter,
// falling back to a JSON body {"quantity": n}.
func quantityParam(w http.ResponseWriter, r *http.Request) (int, error) {
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		return strconv.Atoi(raw)
	}

	var req updateQtyReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		return 0, err
	}
	return req.Quantity, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case ErrCartNotFound:
		kit.WriteError(w, r, http.StatusNotFound, "Cart not found", nil)
	case ErrProductNotFound:
		kit.WriteError(w, r, http.StatusNotFound, "Product not found", nil)
	case ErrItemNotFound:
		kit.WriteError(w, r, http.StatusNotFound, "Item not found in cart", nil)
	default:
		if s.Log != nil {
			s.Log.Error("cart request failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
