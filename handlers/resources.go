package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-resources/internal/config"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/handler"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource/repository"
)

// Route is one registered resource endpoint.
type Route struct {
	Method     string
	Path       string
	Collection string
	Action     handler.Action
	Join       resource.JoinSpec
}

// ResourceRoutes returns the route table for the configured collections:
//
//	GET    /<c>                      index
//	GET    /search/<c>/:key/:value   search
//	GET    /<c>/:id                  show
//	POST   /<c>                      post
//	PUT    /<c>/:id                  put
//	DELETE /<c>/:id                  delete
//	GET    /<c>/:id/<member>         join     (per configured join)
//	GET    /<c>/:id/<member>/members member   (per configured join)
//
// Search sits outside /<c> so that every id, "search" included, reaches show,
// join and member. config.SearchPrefix is therefore not a valid collection.
func ResourceRoutes(cfg config.ResourcesConfig) []Route {
	var out []Route
	for _, c := range cfg.Collections {
		base := "/" + c
		out = append(out,
			Route{http.MethodGet, base, c, handler.ActionIndex, resource.JoinSpec{}},
			Route{http.MethodGet, "/" + config.SearchPrefix + base + "/:key/:value", c, handler.ActionSearch, resource.JoinSpec{}},
			Route{http.MethodGet, base + "/:id", c, handler.ActionShow, resource.JoinSpec{}},
			Route{http.MethodPost, base, c, handler.ActionPost, resource.JoinSpec{}},
			Route{http.MethodPut, base + "/:id", c, handler.ActionPut, resource.JoinSpec{}},
			Route{http.MethodDelete, base + "/:id", c, handler.ActionDelete, resource.JoinSpec{}},
		)
		for _, j := range cfg.JoinsFor(c) {
			spec := resource.JoinSpec{Member: j.Member, Column: j.Column}
			out = append(out,
				Route{http.MethodGet, base + "/:id/" + j.Member, c, handler.ActionJoin, spec},
				Route{http.MethodGet, base + "/:id/" + j.Member + "/members", c, handler.ActionMember, spec},
			)
		}
	}
	return out
}

func isWrite(a handler.Action) bool {
	return a == handler.ActionPost || a == handler.ActionPut || a == handler.ActionDelete
}

// RegisterResourceRoutes binds every route of ResourceRoutes(cfg) on r against
// store. When writeGuard is non-nil it runs before post, put and delete.
// Misconfigured actions are reported here rather than at request time.
func RegisterResourceRoutes(r gin.IRouter, store repository.Store, cfg config.ResourcesConfig, writeGuard gin.HandlerFunc) error {
	handlersByCollection := map[string]*handler.Handler{}
	for _, rt := range ResourceRoutes(cfg) {
		h, ok := handlersByCollection[rt.Collection]
		if !ok {
			h = handler.New(rt.Collection, store)
			handlersByCollection[rt.Collection] = h
		}
		fn, err := h.Bind(rt.Action, rt.Join)
		if err != nil {
			return fmt.Errorf("route %s %s: %w", rt.Method, rt.Path, err)
		}
		chain := []gin.HandlerFunc{fn}
		if writeGuard != nil && isWrite(rt.Action) {
			chain = []gin.HandlerFunc{writeGuard, fn}
		}
		r.Handle(rt.Method, rt.Path, chain...)
	}
	return nil
}
