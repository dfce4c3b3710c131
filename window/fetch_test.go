package window

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hollowdom/hollowdom/network"
)

func TestFetchResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "payload")
	}))
	defer server.Close()

	client, err := network.NewClient()
	if err != nil {
		t.Fatal(err)
	}
	win := New(Options{URL: "https://caller.test/"})

	var got *ScopedResponse
	if err := win.FetchResource(client, server.URL, func(resp *ScopedResponse, err error) {
		if err != nil {
			t.Errorf("Fetch callback error: %v", err)
			return
		}
		got = resp
	}); err != nil {
		t.Fatal(err)
	}

	// The round trip counts as outstanding work until the callback has run
	if win.Ledger().Outstanding() == 0 {
		t.Error("Fetch should register in the ledger immediately")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := win.WaitUntilComplete(ctx); err != nil {
		t.Fatal(err)
	}

	if got == nil {
		t.Fatal("Callback should have run before completion")
	}
	if got.Status != http.StatusOK {
		t.Errorf("Expected 200, got %d", got.Status)
	}
	if string(got.Body) != "payload" {
		t.Errorf("Expected 'payload', got %q", got.Body)
	}
	if got.URL != server.URL {
		t.Errorf("Expected URL %s, got %s", server.URL, got.URL)
	}
	if got.OwnerWindow() != win {
		t.Error("Response should be stamped with the requesting window")
	}
	if win.Ledger().Outstanding() != 0 {
		t.Error("Ledger should be empty after completion")
	}
}

func TestFetchResource_ErrorReachesCallback(t *testing.T) {
	client, err := network.NewClient(network.WithTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	win := New(Options{})

	var cbErr error
	called := false
	if err := win.FetchResource(client, "http://127.0.0.1:1/unreachable", func(resp *ScopedResponse, err error) {
		called = true
		cbErr = err
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := win.WaitUntilComplete(ctx); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("Callback should run on failure")
	}
	if cbErr == nil {
		t.Error("Callback should receive the transport error")
	}
}

func TestFetchResource_ClosedWindow(t *testing.T) {
	client, err := network.NewClient()
	if err != nil {
		t.Fatal(err)
	}
	win := New(Options{})
	win.Abort()

	if err := win.FetchResource(client, "http://irrelevant.test/", func(*ScopedResponse, error) {
		t.Error("Callback must not run for a closed window")
	}); err == nil {
		t.Error("Fetch on a closed window should fail")
	}
}

func TestFetchResource_NilClient(t *testing.T) {
	win := New(Options{})
	if err := win.FetchResource(nil, "http://x.test/", nil); err == nil {
		t.Error("Fetch without a client should fail")
	}
}
