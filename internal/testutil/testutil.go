// Package testutil holds helpers shared by the harness tests.
package testutil

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"mockauth/internal/domain"
	"mockauth/internal/httpauth"
)

// EchoResponse is the body written by EchoCredentialsHandler.
type EchoResponse struct {
	Backend     string            `json:"backend"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Credentials domain.Credential `json:"credentials"`
	HasCreds    bool              `json:"has_credentials"`
	RequestID   string            `json:"request_id"`
}

// EchoCredentialsHandler returns an http.Handler that echoes the request and
// the credentials attached to its context.
func EchoCredentialsHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred, ok := httpauth.CredentialsFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EchoResponse{
			Backend:     name,
			Method:      r.Method,
			Path:        r.URL.Path,
			Credentials: cred,
			HasCreds:    ok,
			RequestID:   httpauth.RequestIDFromContext(r.Context()),
		})
	})
}

// BearerRequest builds a request carrying token as a bearer token. An empty
// token sends no Authorization header.
func BearerRequest(t *testing.T, method, url, token string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DecodeJSON decodes r into a T, failing the test on error.
func DecodeJSON[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
	return v
}

// FreeAddr returns a loopback address with a port that was free when checked.
func FreeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

// WaitForReady polls url until it answers or three seconds pass.
func WaitForReady(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server did not become ready at %s", url)
}
