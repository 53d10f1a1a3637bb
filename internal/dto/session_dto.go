package dto

// LoginRequest carries an externally issued bearer token plus the user it
// belongs to.
type LoginRequest struct {
	UserID string `json:"userId" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// SessionStateResponse reports the auth gate's current view.
type SessionStateResponse struct {
	State  string `json:"state"`
	UserID string `json:"userId,omitempty"`
}

// RouteDecisionResponse answers a navigation request against the gate.
type RouteDecisionResponse struct {
	Path       string `json:"path"`
	Action     string `json:"action"`
	RedirectTo string `json:"redirectTo,omitempty"`
}
