package proxyfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestClientFetchEscapesTargetURL(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL + "/raw?url="})
	res, err := client.Fetch(context.Background(), "https://shop.example.com/p?id=1&v=2")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("Status = %d, want 200", res.Status)
	}
	if res.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("ContentType = %q", res.ContentType)
	}

	want := "url=" + url.QueryEscape("https://shop.example.com/p?id=1&v=2")
	if gotQuery != want {
		t.Fatalf("proxy query = %q, want %q", gotQuery, want)
	}
}

func TestClientFetchSurfacesUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL + "/raw?url="})
	res, err := client.Fetch(context.Background(), "https://blocked.example.com")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if res.Status != http.StatusForbidden {
		t.Fatalf("Status = %d, want 403", res.Status)
	}
}

func TestClientFetchUnreachableProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	client := NewClient(Options{BaseURL: srv.URL + "/raw?url="})
	_, err := client.Fetch(context.Background(), "https://shop.example.com")
	if err == nil {
		t.Fatal("expected error for unreachable proxy")
	}
	if !strings.Contains(err.Error(), "proxy unreachable") {
		t.Fatalf("error = %v, want proxy unreachable", err)
	}
}
