package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-resources/internal/resource"
	"github.com/gogotex/gogotex/backend/go-resources/pkg/logger"
	"github.com/gogotex/gogotex/backend/go-resources/pkg/metrics"
)

// Action identifies one of the request-handling operations of a Handler.
type Action int

const (
	ActionIndex Action = iota
	ActionShow
	ActionPost
	ActionPut
	ActionDelete
	ActionSearch
	ActionJoin
	ActionMember
)

var actionNames = [...]string{"index", "show", "post", "put", "delete", "search", "join", "member"}

type actionFunc func(*Handler, context.Context, Request, resource.JoinSpec) (any, error)

var actions = [...]actionFunc{
	ActionIndex:  (*Handler).Index,
	ActionShow:   (*Handler).Show,
	ActionPost:   (*Handler).Post,
	ActionPut:    (*Handler).Put,
	ActionDelete: (*Handler).Delete,
	ActionSearch: (*Handler).Search,
	ActionJoin:   (*Handler).Join,
	ActionMember: (*Handler).Member,
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

func (a Action) valid() bool { return a >= 0 && int(a) < len(actions) }

// needsJoin reports whether the action runs against a bound member collection.
func (a Action) needsJoin() bool { return a == ActionJoin || a == ActionMember }

// hasBody reports whether the action reads a JSON object body.
func (a Action) hasBody() bool { return a == ActionPost || a == ActionPut }

// ParseAction resolves an action name.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, &DispatchError{Action: name, Reason: "unknown action"}
}

// DispatchError reports a route wired to an action that cannot be served. It
// is returned while routes are registered, never while serving a request.
type DispatchError struct {
	Action string
	Reason string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %q: %s", e.Action, e.Reason)
}

// Action returns a gin handler for the named action. join and member take
// exactly two bound arguments, the member collection and the column holding
// the reference; the other actions take none.
func (h *Handler) Action(name string, bound ...string) (gin.HandlerFunc, error) {
	a, err := ParseAction(name)
	if err != nil {
		return nil, err
	}
	var spec resource.JoinSpec
	if a.needsJoin() {
		if len(bound) != 2 {
			return nil, &DispatchError{Action: name, Reason: fmt.Sprintf("want member and column arguments, got %d", len(bound))}
		}
		spec = resource.JoinSpec{Member: bound[0], Column: bound[1]}
	} else if len(bound) != 0 {
		return nil, &DispatchError{Action: name, Reason: fmt.Sprintf("takes no bound arguments, got %d", len(bound))}
	}
	return h.Bind(a, spec)
}

// MustAction is like Action but panics on a DispatchError.
func (h *Handler) MustAction(name string, bound ...string) gin.HandlerFunc {
	fn, err := h.Action(name, bound...)
	if err != nil {
		panic(err)
	}
	return fn
}

// Bind returns a gin handler running action a with spec fixed for every request.
func (h *Handler) Bind(a Action, spec resource.JoinSpec) (gin.HandlerFunc, error) {
	if !a.valid() {
		return nil, &DispatchError{Action: a.String(), Reason: "unknown action"}
	}
	if a.needsJoin() && (spec.Member == "" || spec.Column == "") {
		return nil, &DispatchError{Action: a.String(), Reason: "member and column must be set"}
	}
	fn := actions[a]
	name := a.String()
	logger.Debugf("bound %s.%s %s", h.collection, name, spec)

	return func(c *gin.Context) {
		start := time.Now()
		req, err := newRequest(c, a)
		if err != nil {
			metrics.ObserveAction(h.collection, name, metrics.OutcomeBadRequest, time.Since(start))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		out, err := fn(h, c.Request.Context(), req, spec)
		if err != nil {
			metrics.ObserveAction(h.collection, name, metrics.OutcomeError, time.Since(start))
			logger.Errorf("%s.%s: %v", h.collection, name, err)
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.ObserveAction(h.collection, name, metrics.OutcomeOK, time.Since(start))
		c.JSON(http.StatusOK, out)
	}, nil
}

var errBodyNotObject = errors.New("request body must be a JSON object")

func newRequest(c *gin.Context, a Action) (Request, error) {
	req := Request{Params: make(map[string]string, len(c.Params))}
	for _, p := range c.Params {
		req.Params[p.Key] = p.Value
	}
	if a.hasBody() {
		var body resource.Document
		if err := c.ShouldBindJSON(&body); err != nil {
			return req, fmt.Errorf("%w: %v", errBodyNotObject, err)
		}
		if body == nil {
			return req, errBodyNotObject
		}
		req.Body = body
	}
	return req, nil
}
