package server_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"mockauth/internal/platform/server"
	"mockauth/internal/testutil"
)

func TestServerStartAndShutdown(t *testing.T) {
	addr := testutil.FreeAddr(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ready"))
	})

	srv := server.New(addr, mux, server.WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	testutil.WaitForReady(t, fmt.Sprintf("http://%s/readyz", addr))

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServerServeListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.New("", mux).Serve(ctx, ln)
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/ping", ln.Addr()))
	if err != nil {
		t.Fatalf("server should be running: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("server shutdown error: %v", err)
	}
}

func TestServerRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	err = server.New(ln.Addr().String(), http.NewServeMux()).Run(context.Background())
	if err == nil {
		t.Fatal("expected error when address is in use")
	}
}
