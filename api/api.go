// Package api provides the HTTP surface of the countersign staging workflow.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/countersign"
)

// API wires all countersign HTTP handlers together.
type API struct {
	eng    *countersign.Engine
	router forge.Router
}

// New creates an API from an Engine and a Forge router.
func New(eng *countersign.Engine, router forge.Router) *API {
	return &API{eng: eng, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("countersign: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerStagingRoutes,
		a.registerAuditRoutes,
		a.registerCheckRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
