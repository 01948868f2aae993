// internal/api/router.go
package api

import (
	"context"
	"fmt"
	"net/http"

	"coffeeshop/internal/authz"
	"coffeeshop/internal/drinks"
	"coffeeshop/internal/httputils"
	"coffeeshop/internal/observability/logging"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Permissions guarding the drink routes
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// Store is the drink persistence used by the handlers
type Store interface {
	List(ctx context.Context) ([]drinks.Drink, error)
	Insert(ctx context.Context, d drinks.Drink) (drinks.Drink, error)
	Update(ctx context.Context, id int64, u drinks.Update) (drinks.Drink, error)
	Delete(ctx context.Context, id int64) error
}

// Rule binds a path and methods to a handler
type Rule struct {
	// Name is a unique identifier for the route
	Name string

	// Path is the mux path template
	Path string

	// Methods is the list of HTTP methods the route accepts
	Methods []string

	// Permission is required before Protected runs.
	// Empty means the route is public and Public is used instead.
	Permission string

	// Public serves unguarded routes
	Public http.HandlerFunc

	// Protected serves guarded routes with the verified claims
	Protected authz.ProtectedFunc
}

// Config holds router configuration
type Config struct {
	// AllowedOrigins lists the CORS origins, "*" for any
	AllowedOrigins []string
}

// Router serves the drinks API
type Router struct {
	*mux.Router
	store   Store
	gate    *authz.Gate
	logger  *logging.Logger
	handler http.Handler
}

// New creates the router and registers every rule in Rules
func New(config Config, store Store, gate *authz.Gate, logger *logging.Logger) (*Router, error) {
	r := &Router{
		Router: mux.NewRouter(),
		store:  store,
		gate:   gate,
		logger: logger.WithModule("api"),
	}

	if err := r.setupRoutes(r.Rules()); err != nil {
		return nil, err
	}

	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{r.logger}),
	)(handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
	)(r.Router))

	return r, nil
}

// ServeHTTP serves the request through panic recovery and CORS
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Rules returns the route table
func (r *Router) Rules() []Rule {
	return []Rule{
		{
			Name:    "list-drinks",
			Path:    "/drinks",
			Methods: []string{http.MethodGet},
			Public:  r.listDrinks,
		},
		{
			Name:       "drink-details",
			Path:       "/drinks-detail",
			Methods:    []string{http.MethodGet},
			Permission: PermissionGetDrinksDetail,
			Protected:  r.drinkDetails,
		},
		{
			Name:       "create-drink",
			Path:       "/drinks",
			Methods:    []string{http.MethodPost},
			Permission: PermissionPostDrinks,
			Protected:  r.createDrink,
		},
		{
			Name:       "update-drink",
			Path:       "/drinks/{id:[0-9]+}",
			Methods:    []string{http.MethodPatch},
			Permission: PermissionPatchDrinks,
			Protected:  r.updateDrink,
		},
		{
			Name:       "delete-drink",
			Path:       "/drinks/{id:[0-9]+}",
			Methods:    []string{http.MethodDelete},
			Permission: PermissionDeleteDrinks,
			Protected:  r.deleteDrink,
		},
	}
}

func (r *Router) setupRoutes(rules []Rule) error {
	for _, rule := range rules {
		var handler http.Handler
		switch {
		case rule.Permission == "" && rule.Public != nil:
			handler = rule.Public
		case rule.Permission != "" && rule.Protected != nil:
			handler = r.gate.Require(rule.Permission, rule.Protected)
		default:
			return fmt.Errorf("route %q has no handler for its access level", rule.Name)
		}

		r.logger.Debug("Setting up route",
			"name", rule.Name,
			"path", rule.Path,
			"methods", rule.Methods,
			"permission", rule.Permission,
		)
		r.Path(rule.Path).Methods(rule.Methods...).Name(rule.Name).Handler(handler)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logging.FromContextOr(req.Context(), r.logger).Info("Request received for undefined route", "path", req.URL.Path)
		httputils.WriteError(w, req, http.StatusNotFound, messageNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		httputils.WriteError(w, req, http.StatusMethodNotAllowed, messageMethodNotAllowed)
	})
	return nil
}

// recoveryLogger adapts Logger to handlers.RecoveryHandlerLogger
type recoveryLogger struct {
	logger *logging.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.logger.Error("Recovered from panic", "panic", fmt.Sprint(args...))
}
