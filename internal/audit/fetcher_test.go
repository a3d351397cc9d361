package audit

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"visualaudit/internal/domain"
	"visualaudit/internal/proxyfetch"
)

type fakeFetcher struct {
	fn func(ctx context.Context, targetURL string) (*proxyfetch.Resource, error)
}

func (f fakeFetcher) Fetch(ctx context.Context, targetURL string) (*proxyfetch.Resource, error) {
	return f.fn(ctx, targetURL)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func pngResource(body string) *proxyfetch.Resource {
	return &proxyfetch.Resource{
		Status:      http.StatusOK,
		ContentType: "image/png",
		Body:        []byte(body),
	}
}

func TestFetchAllPreservesInputOrder(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/a.png",
		"https://cdn.example.com/b.png",
		"https://cdn.example.com/c.png",
	}

	// Gate A's fetch behind B and C so completion order is the reverse of
	// input order.
	bDone := make(chan struct{})
	cDone := make(chan struct{})
	fetcher := fakeFetcher{fn: func(ctx context.Context, targetURL string) (*proxyfetch.Resource, error) {
		switch targetURL {
		case urls[0]:
			<-bDone
			<-cDone
			return pngResource("A"), nil
		case urls[1]:
			defer close(bDone)
			return pngResource("B"), nil
		default:
			defer close(cDone)
			return pngResource("C"), nil
		}
	}}

	assets, err := NewAssetFetcher(fetcher, testLogger()).FetchAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("got %d assets, want 3", len(assets))
	}
	for i, want := range []string{"A", "B", "C"} {
		if assets[i].SourceURL != urls[i] {
			t.Fatalf("assets[%d].SourceURL = %q, want %q", i, assets[i].SourceURL, urls[i])
		}
		if assets[i].Payload != base64.StdEncoding.EncodeToString([]byte(want)) {
			t.Fatalf("assets[%d].Payload mismatch", i)
		}
	}
}

func TestFetchAllDropsFailedCandidates(t *testing.T) {
	urls := []string{"https://a.example.com/1.png", "https://a.example.com/2.png", "https://a.example.com/3.png"}

	fetcher := fakeFetcher{fn: func(ctx context.Context, targetURL string) (*proxyfetch.Resource, error) {
		if targetURL == urls[1] {
			return nil, errors.New("connection reset")
		}
		return pngResource(targetURL), nil
	}}

	assets, err := NewAssetFetcher(fetcher, testLogger()).FetchAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].SourceURL != urls[0] || assets[1].SourceURL != urls[2] {
		t.Fatalf("survivor order wrong: %q, %q", assets[0].SourceURL, assets[1].SourceURL)
	}
}

func TestFetchAllRejectsUnsupportedContentTypes(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		ok          bool
	}{
		{name: "jpeg", contentType: "image/jpeg", status: http.StatusOK, ok: true},
		{name: "jpeg with charset", contentType: "image/jpeg; charset=binary", status: http.StatusOK, ok: true},
		{name: "jpg alias normalized", contentType: "image/jpg", status: http.StatusOK, ok: true},
		{name: "webp", contentType: "image/webp", status: http.StatusOK, ok: true},
		{name: "svg rejected", contentType: "image/svg+xml", status: http.StatusOK, ok: false},
		{name: "html rejected", contentType: "text/html", status: http.StatusOK, ok: false},
		{name: "blocked status", contentType: "image/png", status: http.StatusForbidden, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := fakeFetcher{fn: func(ctx context.Context, targetURL string) (*proxyfetch.Resource, error) {
				return &proxyfetch.Resource{Status: tc.status, ContentType: tc.contentType, Body: []byte("payload")}, nil
			}}

			assets, err := NewAssetFetcher(fetcher, testLogger()).FetchAll(context.Background(), []string{"https://a.example.com/x"})
			if tc.ok {
				if err != nil {
					t.Fatalf("FetchAll returned error: %v", err)
				}
				if len(assets) != 1 {
					t.Fatalf("got %d assets, want 1", len(assets))
				}
				return
			}
			if !errors.Is(err, domain.ErrNoUsableAssets) {
				t.Fatalf("err = %v, want ErrNoUsableAssets", err)
			}
		})
	}
}

func TestFetchAllAllCandidatesFailed(t *testing.T) {
	fetcher := fakeFetcher{fn: func(ctx context.Context, targetURL string) (*proxyfetch.Resource, error) {
		return nil, errors.New("boom")
	}}

	_, err := NewAssetFetcher(fetcher, testLogger()).FetchAll(context.Background(), []string{"https://a.example.com/1.png", "https://a.example.com/2.png"})
	if !errors.Is(err, domain.ErrNoUsableAssets) {
		t.Fatalf("err = %v, want ErrNoUsableAssets", err)
	}
}

func TestFetchAllNormalizesJpgAlias(t *testing.T) {
	fetcher := fakeFetcher{fn: func(ctx context.Context, targetURL string) (*proxyfetch.Resource, error) {
		return &proxyfetch.Resource{Status: http.StatusOK, ContentType: "image/jpg", Body: []byte("x")}, nil
	}}

	assets, err := NewAssetFetcher(fetcher, testLogger()).FetchAll(context.Background(), []string{"https://a.example.com/x.jpg"})
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if assets[0].ContentType != "image/jpeg" {
		t.Fatalf("ContentType = %q, want image/jpeg", assets[0].ContentType)
	}
}
