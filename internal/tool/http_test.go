package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTP_Execute_Get(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ep, tok := mustEnforce(t, "http", "get", srv.URL)
	out, err := (HTTP{}).Execute(context.Background(), ep, tok)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Text != "ok" {
		t.Errorf("Text = %q, want %q", out.Text, "ok")
	}
}

func TestHTTP_Execute_UnsupportedAction(t *testing.T) {
	t.Parallel()

	ep, tok := mustEnforce(t, "http", "run", "http://example.invalid")
	_, err := (HTTP{}).Execute(context.Background(), ep, tok)
	if err == nil {
		t.Fatal("expected an error for a non-get action")
	}
}

func TestHTTP_Execute_Timeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block) // runs first, so srv.Close is not left waiting on the handler

	ep, tok := mustEnforce(t, "http", "get", srv.URL)
	_, err := (HTTP{Timeout: 50 * time.Millisecond}).Execute(context.Background(), ep, tok)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestHTTP_Execute_BodyTruncatedAtLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 2<<20)
		w.Write(buf)
	}))
	defer srv.Close()

	ep, tok := mustEnforce(t, "http", "get", srv.URL)
	out, err := (HTTP{}).Execute(context.Background(), ep, tok)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Text) != 1<<20 {
		t.Errorf("len(Text) = %d, want %d", len(out.Text), 1<<20)
	}
}
