package httpauth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"mockauth/internal/domain"
)

// CookieName is the cookie carrying a limited user token. The token is stored
// base64url encoded because JSON payloads contain bytes not allowed in cookie
// values.
const CookieName = "mock-auth"

// IssueUserCookie sets a cookie holding a limited user token for cred and
// returns the token's expiry. Only user credentials can be issued a cookie.
func IssueUserCookie(ctx context.Context, w http.ResponseWriter, issuer TokenIssuer, cred domain.Credential) (time.Time, error) {
	tok, err := issuer.GetLimitedUserToken(ctx, cred)
	if err != nil {
		return time.Time{}, fmt.Errorf("issuing user cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(tok.Token)),
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return tok.ExpiresAt, nil
}

// TokenFromCookie returns the limited user token stored by IssueUserCookie.
func TokenFromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", false
	}
	return string(b), true
}
