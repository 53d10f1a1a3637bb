package session

import "strings"

// Sign-in failures from the auth provider surface as fixed messages; codes
// outside the map fall back to a generic one.
var authErrorMessages = map[string]string{
	"auth/invalid-email":          "The email address is not valid.",
	"auth/user-disabled":          "This account has been disabled.",
	"auth/user-not-found":         "No account exists for this email.",
	"auth/wrong-password":         "Incorrect password. Please try again.",
	"auth/invalid-credential":     "Incorrect email or password.",
	"auth/too-many-requests":      "Too many attempts. Please try again later.",
	"auth/network-request-failed": "Network error. Check your connection and try again.",
	"auth/popup-closed-by-user":   "Sign-in window was closed before completing.",
	"auth/popup-blocked":          "Sign-in popup was blocked by the browser.",
}

const genericAuthError = "Sign-in failed. Please try again."

// AuthErrorMessage maps a provider error code to its display message.
func AuthErrorMessage(code string) string {
	if message, ok := authErrorMessages[strings.TrimSpace(code)]; ok {
		return message
	}
	return genericAuthError
}
