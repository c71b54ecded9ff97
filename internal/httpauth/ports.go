// Package httpauth connects the mock auth service to HTTP handlers: request
// context helpers, the ports the middleware depends on, and cookie issuance.
package httpauth

import (
	"context"
	"net/http"

	"mockauth/internal/domain"
	"mockauth/internal/mockauth"
)

// Authenticator resolves bearer tokens into credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Credential, error)
	// AuthenticateLimited additionally accepts limited user tokens.
	AuthenticateLimited(ctx context.Context, token string) (domain.Credential, error)
}

// TokenIssuer mints tokens on behalf of authenticated callers.
type TokenIssuer interface {
	GetOwnServiceCredentials(ctx context.Context) domain.Credential
	GetPluginRequestToken(ctx context.Context, opts mockauth.PluginRequestTokenOptions) (mockauth.PluginRequestToken, error)
	GetLimitedUserToken(ctx context.Context, cred domain.Credential) (mockauth.LimitedToken, error)
	ListPublicServiceKeys(ctx context.Context) mockauth.PublicKeySet
}

// StatusWriter wraps http.ResponseWriter to capture the status code.
type StatusWriter struct {
	http.ResponseWriter
	Code int
}

func (sw *StatusWriter) WriteHeader(code int) {
	sw.Code = code
	sw.ResponseWriter.WriteHeader(code)
}

// CredentialsFromContext extracts the caller's credentials from a request context.
func CredentialsFromContext(ctx context.Context) (domain.Credential, bool) {
	c, ok := ctx.Value(credentialsKey{}).(domain.Credential)
	return c, ok
}

// ContextWithCredentials stores the caller's credentials in the context.
func ContextWithCredentials(ctx context.Context, c domain.Credential) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

type credentialsKey struct{}

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID stores the request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

type requestIDKey struct{}
