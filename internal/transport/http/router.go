package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appdragons "dragon-backend/internal/app/dragons"
	"dragon-backend/internal/snapshot"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(holder *snapshot.Holder) *chi.Mux {
	svc := appdragons.NewService(holder)
	handlers := NewDragonHandlers(svc, holder)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", handlers.Health())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/dragons", handlers.List(appdragons.ScopeAll))
		r.Get("/dragons/{id}", handlers.GetByID())
		r.Get("/battle", handlers.List(appdragons.ScopeBattle))
		r.Get("/breed", handlers.List(appdragons.ScopeBreed))
		r.Get("/market", handlers.List(appdragons.ScopeMarket))

		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
