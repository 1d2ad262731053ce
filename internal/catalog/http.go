package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"MiniShop/pkg/kit"
)

type Server struct {
	Svc *Service
}

func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Svc.ListProducts())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Svc.GetProduct(id)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "Product not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}
