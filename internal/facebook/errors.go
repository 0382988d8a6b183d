package facebook

import "fmt"

// Graph API error codes. 190 is an expired or invalid token, 200 a missing
// permission; 4/17/32/613 are the documented throttling codes.
const (
	codeTokenInvalid = 190
	codePermission   = 200
	codeAppThrottle  = 4
	codeUserThrottle = 17
	codePageThrottle = 32
	codeCustomLimit  = 613
)

// AuthError means the access token is invalid or expired.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("facebook: access token invalid or expired: %s", e.Message)
}

// PermissionError means the token lacks a required scope.
type PermissionError struct {
	Scope   string
	Message string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("facebook: missing permission %q: %s", e.Scope, e.Message)
}

// RateLimitError means the platform throttled the call.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("facebook: rate limited: %s", e.Message)
}

// PlatformError carries any other upstream failure.
type PlatformError struct {
	Code    int
	Message string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("facebook: platform error (code %d): %s", e.Code, e.Message)
}

// mapError turns a Graph error payload into the typed taxonomy. scope names
// the permission the failed operation needed, e.g. pages_manage_engagement
// for replies or pages_manage_posts for publishing.
func mapError(code int, message, scope string) error {
	switch code {
	case codeTokenInvalid:
		return &AuthError{Message: message}
	case codePermission:
		return &PermissionError{Scope: scope, Message: message}
	case codeAppThrottle, codeUserThrottle, codePageThrottle, codeCustomLimit:
		return &RateLimitError{Message: message}
	default:
		return &PlatformError{Code: code, Message: message}
	}
}
