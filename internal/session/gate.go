// Package session implements the view-routing state machine driven by the
// external authentication provider's state stream.
package session

import (
	"strings"
	"sync"
)

// State is the gate's resolution of the auth status.
type State string

const (
	// StateUnknown holds until the first auth callback fires; there is no
	// timeout fallback, the gate stays unresolved forever if it never does.
	StateUnknown         State = "unknown"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Decision tells the caller what to render for a requested path.
type Decision int

const (
	// DecisionLoading renders the loading indicator and no routes.
	DecisionLoading Decision = iota
	DecisionAllow
	DecisionRedirectLogin
)

// LoginPath is where unauthenticated requests for protected paths land.
const LoginPath = "/login"

var publicPaths = map[string]struct{}{
	"/":       {},
	LoginPath: {},
}

// AuthObserver registers a callback on an external auth-state stream and
// returns an unsubscribe function. The callback receives the user id, empty
// when signed out.
type AuthObserver func(callback func(userID string)) (unsubscribe func())

// Gate tracks the auth state and resolves route requests against it.
type Gate struct {
	mu          sync.RWMutex
	state       State
	userID      string
	unsubscribe func()
	listeners   []func(State)
}

// NewGate subscribes to the observer and starts in the unknown state.
func NewGate(observe AuthObserver) *Gate {
	gate := &Gate{state: StateUnknown}
	if observe != nil {
		gate.unsubscribe = observe(gate.onAuthState)
	}
	return gate
}

func (g *Gate) onAuthState(userID string) {
	g.mu.Lock()
	if userID != "" {
		g.state = StateAuthenticated
		g.userID = userID
	} else {
		g.state = StateUnauthenticated
		g.userID = ""
	}
	listeners := append([]func(State){}, g.listeners...)
	state := g.state
	g.mu.Unlock()

	for _, listener := range listeners {
		listener(state)
	}
}

// State returns the current resolution.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// UserID returns the signed-in user id, empty unless authenticated.
func (g *Gate) UserID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.userID
}

// OnChange registers a listener invoked on every state transition.
func (g *Gate) OnChange(listener func(State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, listener)
}

// Resolve decides what to do with a requested path. Public paths stay
// reachable when authenticated; nothing is reachable while unresolved.
func (g *Gate) Resolve(path string) Decision {
	path = normalizePath(path)

	g.mu.RLock()
	defer g.mu.RUnlock()

	switch g.state {
	case StateUnknown:
		return DecisionLoading
	case StateAuthenticated:
		return DecisionAllow
	default:
		if _, ok := publicPaths[path]; ok {
			return DecisionAllow
		}
		return DecisionRedirectLogin
	}
}

// Close detaches the gate from the auth stream.
func (g *Gate) Close() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
