package audit

import (
	"time"

	"github.com/google/uuid"

	"visualaudit/internal/domain"
)

// Reconcile merges the analysis response back onto the fetched assets by
// position: the i-th analysis record inherits the i-th asset's URL, payload,
// and content type. The engine is instructed to keep submission order, and
// the record's own id field is not cross-checked against it. Records beyond
// the asset count keep an empty identity rather than failing.
func Reconcile(resp *domain.AnalysisResponse, assets []domain.FetchedAsset, pageURL string) *domain.AuditResult {
	records := make([]domain.ImageAuditRecord, 0, len(resp.Images))
	for i, img := range resp.Images {
		record := domain.ImageAuditRecord{ImageAnalysis: img}
		if i < len(assets) {
			record.SourceURL = assets[i].SourceURL
			record.Payload = assets[i].Payload
			record.ContentType = assets[i].ContentType
		}
		records = append(records, record)
	}

	var summary domain.PageSummary
	if resp.Summary != nil {
		summary = *resp.Summary
	}

	return &domain.AuditResult{
		ID:        uuid.NewString(),
		PageURL:   pageURL,
		CreatedAt: time.Now().UTC(),
		Images:    records,
		Summary:   summary,
	}
}
