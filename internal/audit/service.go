package audit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"visualaudit/internal/domain"
	"visualaudit/internal/proxyfetch"
)

// Analyzer is the external vision capability: it accepts the fetched assets
// plus the page identity and returns a schema-conforming analysis.
type Analyzer interface {
	Analyze(ctx context.Context, assets []domain.FetchedAsset, pageURL string) (*domain.AnalysisResponse, error)
}

// Service orchestrates one audit end to end: markup retrieval, candidate
// extraction, resolution and filtering, concurrent asset fetching, analysis,
// and reconciliation. Stages run strictly downstream; any terminal error
// aborts the audit with no partial result. Concurrent audits share nothing.
type Service struct {
	retriever *MarkupRetriever
	fetcher   *AssetFetcher
	analyzer  Analyzer
	maxImages int
	logger    zerolog.Logger
}

func NewService(fetcher proxyfetch.Fetcher, analyzer Analyzer, maxImages int, logger zerolog.Logger) *Service {
	if maxImages <= 0 {
		maxImages = 5
	}
	return &Service{
		retriever: NewMarkupRetriever(fetcher),
		fetcher:   NewAssetFetcher(fetcher, logger),
		analyzer:  analyzer,
		maxImages: maxImages,
		logger:    logger,
	}
}

// Audit runs the full pipeline for one page URL.
func (s *Service) Audit(ctx context.Context, pageURL string) (*domain.AuditResult, error) {
	base, err := parsePageURL(pageURL)
	if err != nil {
		return nil, err
	}

	markup, err := s.retriever.RetrieveMarkup(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	candidates, err := ExtractCandidates(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	s.logger.Debug().Int("candidates", len(candidates)).Str("page_url", pageURL).Msg("audit: extracted candidates")

	resolved, err := ResolveCandidates(candidates, base, s.maxImages)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int("resolved", len(resolved)).Str("page_url", pageURL).Msg("audit: resolved candidates")

	assets, err := s.fetcher.FetchAll(ctx, resolved)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.Analyze(ctx, assets, pageURL)
	if err != nil {
		return nil, err
	}

	result := Reconcile(analysis, assets, pageURL)
	s.logger.Info().
		Str("audit_id", result.ID).
		Str("page_url", pageURL).
		Int("images", len(result.Images)).
		Msg("audit: completed")
	return result, nil
}

func parsePageURL(pageURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPageURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidPageURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", domain.ErrInvalidPageURL)
	}
	return parsed, nil
}
