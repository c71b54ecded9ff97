// Package harness exposes a mock auth service over HTTP so that local tools
// and tests can mint and inspect mock tokens.
package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mockauth/internal/domain"
	"mockauth/internal/httpauth"
	"mockauth/internal/mockauth"
	"mockauth/internal/platform/telemetry"
)

const maxBodyBytes = 64 << 10

// Router serves the harness endpoints. It expects the Credentials middleware
// to have stored the caller's credentials in the request context.
type Router struct {
	mux      *http.ServeMux
	issuer   httpauth.TokenIssuer
	validate *requestValidator
	metrics  *telemetry.Metrics
}

// NewRouter creates a router backed by issuer.
// The metrics parameter is optional; pass nil to skip metric recording.
func NewRouter(issuer httpauth.TokenIssuer, m *telemetry.Metrics) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		issuer:   issuer,
		validate: newRequestValidator(),
		metrics:  m,
	}

	r.mux.HandleFunc("GET /healthz", r.healthz)
	r.mux.HandleFunc("GET /readyz", r.readyz)
	r.mux.HandleFunc("GET /.well-known/jwks.json", r.jwks)

	r.mux.HandleFunc("GET /v1/credentials", r.credentials)
	r.mux.HandleFunc("GET /v1/credentials/own", r.ownCredentials)
	r.mux.HandleFunc("POST /v1/tokens/plugin-request", r.pluginRequestToken)
	r.mux.HandleFunc("POST /v1/tokens/limited-user", r.limitedUserToken)
	r.mux.HandleFunc("POST /v1/cookie", r.cookie)

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

type pluginRequestTokenRequest struct {
	TargetPluginID string `json:"targetPluginId" validate:"required,max=128,excludesall=:/"`
}

type cookieResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r *Router) credentials(w http.ResponseWriter, req *http.Request) {
	cred, ok := httpauth.CredentialsFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (r *Router) ownCredentials(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.issuer.GetOwnServiceCredentials(req.Context()))
}

func (r *Router) pluginRequestToken(w http.ResponseWriter, req *http.Request) {
	cred, ok := httpauth.CredentialsFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var body pluginRequestTokenRequest
	if err := decodeBody(w, req, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := r.validate.Validate(body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	tok, err := r.issuer.GetPluginRequestToken(req.Context(), mockauth.PluginRequestTokenOptions{
		OnBehalfOf:     cred,
		TargetPluginID: body.TargetPluginID,
	})
	if err != nil {
		writeIssueError(w, err)
		return
	}
	r.recordIssued(req, "plugin_request")
	writeJSON(w, http.StatusOK, tok)
}

func (r *Router) limitedUserToken(w http.ResponseWriter, req *http.Request) {
	cred, ok := httpauth.CredentialsFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	tok, err := r.issuer.GetLimitedUserToken(req.Context(), cred)
	if err != nil {
		writeIssueError(w, err)
		return
	}
	r.recordIssued(req, "limited_user")
	writeJSON(w, http.StatusOK, tok)
}

func (r *Router) cookie(w http.ResponseWriter, req *http.Request) {
	cred, ok := httpauth.CredentialsFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	expiresAt, err := httpauth.IssueUserCookie(req.Context(), w, r.issuer, cred)
	if err != nil {
		writeIssueError(w, err)
		return
	}
	r.recordIssued(req, "cookie")
	writeJSON(w, http.StatusOK, cookieResponse{ExpiresAt: expiresAt})
}

func (r *Router) jwks(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.issuer.ListPublicServiceKeys(req.Context()))
}

func (r *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *Router) recordIssued(req *http.Request, kind string) {
	if r.metrics != nil {
		r.metrics.RecordTokenIssued(req.Context(), kind)
	}
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeIssueError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnsupportedPrincipal) {
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
		return
	}
	if errors.Is(err, domain.ErrInvalidCredential) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	slog.Error("issuing mock token", "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "failed to issue token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, errCode, msg string) {
	writeJSON(w, status, domain.ErrorResponse{Error: errCode, Message: msg})
}
