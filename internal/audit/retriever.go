package audit

import (
	"context"
	"net/http"

	"visualaudit/internal/domain"
	"visualaudit/internal/proxyfetch"
)

// MarkupRetriever fetches the raw markup of a page through the indirection
// layer. It carries no parsing logic; it only translates fetch failures into
// the retrieval error taxonomy.
type MarkupRetriever struct {
	fetcher proxyfetch.Fetcher
}

func NewMarkupRetriever(fetcher proxyfetch.Fetcher) *MarkupRetriever {
	return &MarkupRetriever{fetcher: fetcher}
}

// RetrieveMarkup returns the page markup or a RetrievalError. The error
// carries the upstream status when the target host answered with one, and the
// transport cause when the indirection service was unreachable.
func (r *MarkupRetriever) RetrieveMarkup(ctx context.Context, pageURL string) (string, error) {
	res, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", &domain.RetrievalError{Target: pageURL, Cause: err}
	}
	if res.Status < http.StatusOK || res.Status >= http.StatusMultipleChoices {
		return "", &domain.RetrievalError{Target: pageURL, UpstreamStatus: res.Status}
	}
	return string(res.Body), nil
}
