// SPDX-License-Identifier: MPL-2.0

package index

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchIndex_ReturnsWholeDocument(t *testing.T) {
	t.Parallel()

	const listing = `<a href="cpu/torch-1.13.1-cp310-cp310-linux_x86_64.whl">torch</a>
<a href="cu117/torch-1.13.1%2Bcu117-cp310-cp310-linux_x86_64.whl">torch</a>`

	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(listing))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithUserAgent("torchkiln/test"))
	doc, err := client.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc != listing {
		t.Errorf("FetchIndex() = %q, want %q", doc, listing)
	}
	if gotPath != "/whl/torch_stable.html" {
		t.Errorf("request path = %q, want %q", gotPath, "/whl/torch_stable.html")
	}
	if gotUA != "torchkiln/test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "torchkiln/test")
	}
}

func TestFetchIndex_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchIndex(context.Background())
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("error type = %T, want *FetchError", err)
	}
}

func TestFetchIndex_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab a port that refuses connections by closing the server first.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchIndex(context.Background())
	if err == nil {
		t.Fatal("expected error when the index is unreachable")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("error type = %T, want *FetchError", err)
	}
}
