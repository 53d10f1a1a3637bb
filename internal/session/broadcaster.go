package session

import "sync"

// AuthBroadcaster adapts an external auth provider into the gate's observer
// contract: one registered callback, fired on every state change.
type AuthBroadcaster struct {
	mu       sync.Mutex
	callback func(userID string)
	current  string
	resolved bool
}

// Observe registers the gate's callback. If the auth state already resolved
// before the gate subscribed, the callback fires immediately with it.
func (b *AuthBroadcaster) Observe(callback func(userID string)) func() {
	b.mu.Lock()
	b.callback = callback
	resolved := b.resolved
	current := b.current
	b.mu.Unlock()

	if resolved && callback != nil {
		callback(current)
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.callback = nil
	}
}

// SignIn announces an authenticated user.
func (b *AuthBroadcaster) SignIn(userID string) {
	b.fire(userID)
}

// SignOut announces that no user is signed in.
func (b *AuthBroadcaster) SignOut() {
	b.fire("")
}

func (b *AuthBroadcaster) fire(userID string) {
	b.mu.Lock()
	b.current = userID
	b.resolved = true
	callback := b.callback
	b.mu.Unlock()

	if callback != nil {
		callback(userID)
	}
}
