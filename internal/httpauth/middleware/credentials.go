package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"mockauth/internal/domain"
	"mockauth/internal/httpauth"
	"mockauth/internal/platform/telemetry"
)

// Policy controls which callers the Credentials middleware lets through.
type Policy struct {
	// Allow lists the accepted principal types. Empty means user and service.
	// PrincipalUnknown accepts every caller, including unauthenticated ones.
	Allow []domain.PrincipalType
	// AllowLimitedAccess accepts limited user tokens, both in the
	// Authorization header and in the httpauth.CookieName cookie.
	AllowLimitedAccess bool
	// PublicPaths bypass authentication; handlers see none credentials.
	PublicPaths []string
}

var defaultAllow = []domain.PrincipalType{domain.PrincipalUser, domain.PrincipalService}

// Credentials returns a middleware that resolves the caller's mock token into
// credentials and stores them in the request context.
// Requests without a token resolve to none credentials.
// The metrics parameter is optional; pass nil to skip metric recording.
func Credentials(auth httpauth.Authenticator, policy Policy, m *telemetry.Metrics) Middleware {
	public := make(map[string]struct{}, len(policy.PublicPaths))
	for _, p := range policy.PublicPaths {
		public[p] = struct{}{}
	}
	allow := policy.Allow
	if len(allow) == 0 {
		allow = defaultAllow
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok {
				ctx := httpauth.ContextWithCredentials(r.Context(), domain.NoneCredential())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			cred, err := resolveCredentials(r, auth, policy.AllowLimitedAccess)
			if err != nil {
				slog.Debug("mock token rejected", "error", err, "path", r.URL.Path)
				if m != nil {
					m.RecordAuthentication(r.Context(), "failure", domain.PrincipalNone.String())
				}
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}

			if !allowed(allow, cred) {
				if m != nil {
					m.RecordAuthentication(r.Context(), "denied", cred.Type.String())
				}
				if cred.Type == domain.PrincipalNone {
					writeError(w, http.StatusUnauthorized, "unauthorized", "missing credentials")
					return
				}
				err := fmt.Errorf("%w: this endpoint does not allow '%s' credentials", domain.ErrNotAllowed, cred.Type)
				slog.Debug("credentials denied", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "forbidden", err.Error())
				return
			}

			if m != nil {
				m.RecordAuthentication(r.Context(), "success", cred.Type.String())
			}
			capture(r.Context(), cred)
			ctx := httpauth.ContextWithCredentials(r.Context(), cred)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveCredentials(r *http.Request, auth httpauth.Authenticator, allowLimited bool) (domain.Credential, error) {
	authenticate := auth.Authenticate
	if allowLimited {
		authenticate = auth.AuthenticateLimited
	}

	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := extractBearerToken(header)
		if !ok {
			return domain.Credential{}, fmt.Errorf("%w: malformed authorization header", domain.ErrUnauthenticated)
		}
		return authenticate(r.Context(), token)
	}

	if allowLimited {
		if token, ok := httpauth.TokenFromCookie(r); ok {
			return auth.AuthenticateLimited(r.Context(), token)
		}
	}
	return domain.NoneCredential(), nil
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func allowed(allow []domain.PrincipalType, cred domain.Credential) bool {
	return slices.ContainsFunc(allow, cred.Is)
}

func writeError(w http.ResponseWriter, status int, errCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(domain.ErrorResponse{
		Error:   errCode,
		Message: msg,
	}); err != nil {
		slog.Error("encoding error response", "error", err)
	}
}

// credentialsCapture lets outer middleware observe the credentials resolved
// further down the chain.
type credentialsCapture struct {
	value domain.Credential
}

type captureKey struct{}

func withCapture(ctx context.Context, c *credentialsCapture) context.Context {
	return context.WithValue(ctx, captureKey{}, c)
}

func capture(ctx context.Context, cred domain.Credential) {
	if c, ok := ctx.Value(captureKey{}).(*credentialsCapture); ok {
		c.value = cred
	}
}
