package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"MiniShop/pkg/kit"
)

type Server struct {
	Svc *Service
}

func (s *Server) Register(r chi.Router) {
	r.Post("/admin/generate-discount", s.generateDiscount)
	r.Get("/admin/statistics", s.statistics)
}

func (s *Server) generateDiscount(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Svc.GenerateDiscountCode())
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Svc.Statistics())
}
