package audit

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"visualaudit/internal/domain"
	"visualaudit/internal/proxyfetch"
)

// Raster formats the analysis engine accepts. Vector types are rejected here
// again even though the resolver already filters them, in case a host serves
// SVG under a raster-looking URL.
var supportedContentTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/webp": "image/webp",
	"image/gif":  "image/gif",
}

// AssetFetcher retrieves candidate images through the indirection layer,
// validates their content type, and base64-encodes the payloads.
type AssetFetcher struct {
	fetcher proxyfetch.Fetcher
	logger  zerolog.Logger
}

func NewAssetFetcher(fetcher proxyfetch.Fetcher, logger zerolog.Logger) *AssetFetcher {
	return &AssetFetcher{fetcher: fetcher, logger: logger}
}

// FetchAll fetches every candidate concurrently and waits for all of them to
// settle. Failed candidates are dropped, never retried, and never fail the
// whole operation; the survivors come back in input order regardless of
// completion order. Returns ErrNoUsableAssets when every candidate failed.
func (f *AssetFetcher) FetchAll(ctx context.Context, urls []string) ([]domain.FetchedAsset, error) {
	slots := make([]*domain.FetchedAsset, len(urls))

	var g errgroup.Group
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			slots[i] = f.fetchOne(ctx, u)
			return nil
		})
	}
	_ = g.Wait() // tasks never error; failures leave their slot empty

	assets := make([]domain.FetchedAsset, 0, len(urls))
	for _, slot := range slots {
		if slot != nil {
			assets = append(assets, *slot)
		}
	}
	if len(assets) == 0 {
		return nil, domain.ErrNoUsableAssets
	}
	return assets, nil
}

// fetchOne returns nil for any failure: bad status, unsupported content
// type, or transport error. Partial loss is tolerated by design.
func (f *AssetFetcher) fetchOne(ctx context.Context, assetURL string) *domain.FetchedAsset {
	res, err := f.fetcher.Fetch(ctx, assetURL)
	if err != nil {
		f.logger.Debug().Err(err).Str("asset_url", assetURL).Msg("audit: asset fetch failed")
		return nil
	}
	if res.Status < http.StatusOK || res.Status >= http.StatusMultipleChoices {
		f.logger.Debug().Int("status", res.Status).Str("asset_url", assetURL).Msg("audit: asset fetch refused")
		return nil
	}

	contentType, ok := normalizeContentType(res.ContentType)
	if !ok {
		f.logger.Debug().Str("content_type", res.ContentType).Str("asset_url", assetURL).Msg("audit: unsupported asset content type")
		return nil
	}
	if len(res.Body) == 0 {
		return nil
	}

	return &domain.FetchedAsset{
		SourceURL:   assetURL,
		Payload:     base64.StdEncoding.EncodeToString(res.Body),
		ContentType: contentType,
	}
}

// normalizeContentType strips media-type parameters and maps the bare type
// onto the supported allow-list.
func normalizeContentType(raw string) (string, bool) {
	media := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(media, ";"); idx >= 0 {
		media = strings.TrimSpace(media[:idx])
	}
	normalized, ok := supportedContentTypes[media]
	return normalized, ok
}
