// internal/wire/wire.go
package wire

import (
	"net/http"

	"flight-booking/internal/adaptor"
	"flight-booking/internal/data/entity"
	"flight-booking/internal/policy"
	"flight-booking/internal/usecase"
	"flight-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the services behind it
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// guards are the middleware chains shared by the route groups
type guards struct {
	auth       func(http.Handler) http.Handler
	admin      func(http.Handler) http.Handler
	owner      func(http.Handler) http.Handler
	ownerAdmin func(http.Handler) http.Handler
}

// Wiring builds the services, handlers and router from the dependencies
func Wiring(deps usecase.Dependencies) *App {
	if deps.Identity == nil {
		deps.Identity = policy.NewIdentityProvider(deps.Repo.User)
	}

	service := usecase.NewService(deps)
	handler := adaptor.NewHandler(service, deps.Log)

	g := guards{
		auth:       middleware.Auth(deps.Config.JWT.Secret, deps.Repo.Session, deps.Identity, deps.Log),
		admin:      middleware.RequireRole(deps.Identity, deps.Log, entity.RoleAdmin),
		owner:      middleware.RequireRole(deps.Identity, deps.Log, entity.RoleFlightOwner),
		ownerAdmin: middleware.RequireRole(deps.Identity, deps.Log, entity.RoleFlightOwner, entity.RoleAdmin),
	}

	return &App{
		Router:  setupRouter(handler, g, deps.Log),
		Service: service,
	}
}

// setupRouter configures the chi router
func setupRouter(handler *adaptor.Handler, g guards, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, g)
	wireUser(r, handler.User, g)
	wireFlight(r, handler.Flight, g)
	wireBooking(r, handler.Booking, g)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
