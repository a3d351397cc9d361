package domain

import "time"

// CandidateSource identifies where in the markup an image reference was found.
type CandidateSource string

const (
	SourceMetaTag  CandidateSource = "meta"
	SourceSrcSet   CandidateSource = "srcset"
	SourceImgTag   CandidateSource = "img"
	SourceLazyAttr CandidateSource = "lazy"
)

// Candidate is a raw, unresolved image reference extracted from the page
// markup together with the location it came from. Candidates are not URLs
// yet; resolution and filtering happen downstream.
type Candidate struct {
	Ref    string
	Source CandidateSource
}

// FetchedAsset is an image that survived fetching and content-type
// validation. Payload is base64-encoded. The position of an asset within the
// fetched sequence is significant: analysis results are merged back by index.
type FetchedAsset struct {
	SourceURL   string
	Payload     string
	ContentType string
}

// ImageAnalysis is the per-image portion of the analysis engine's response.
type ImageAnalysis struct {
	ID             string   `json:"id"`
	DominantColors []string `json:"dominantColors"`
	Composition    string   `json:"composition"`
	Lighting       string   `json:"lighting"`
	Mood           string   `json:"mood"`
	Aesthetic      string   `json:"aesthetic"`
	QualityScore   float64  `json:"qualityScore"`
	Description    string   `json:"description"`
	HowToImprove   string   `json:"howToImprove"`
}

// CompetitorInsight describes one competitor referenced in the page summary.
type CompetitorInsight struct {
	Name           string   `json:"name"`
	Strengths      []string `json:"strengths"`
	VisualTakeaway string   `json:"visualTakeaway"`
	MarketPosition string   `json:"marketPosition"`
}

// PageSummary is the page-level portion of the analysis engine's response.
type PageSummary struct {
	BrandConsistency     float64             `json:"brandConsistency"`
	CreativeStyle        string              `json:"creativeStyle"`
	TypographyNotes      string              `json:"typographyNotes"`
	LayoutAnalysis       string              `json:"layoutAnalysis"`
	MarketingActionables []string            `json:"marketingActionables"`
	OverallAesthetic     string              `json:"overallAesthetic"`
	VisualRoadmap        []string            `json:"visualRoadmap"`
	Competitors          []CompetitorInsight `json:"competitors"`
}

// AnalysisResponse is the schema the vision engine must return. Both fields
// are required; a response missing either violates the contract.
type AnalysisResponse struct {
	Images  []ImageAnalysis `json:"images"`
	Summary *PageSummary    `json:"summary"`
}

// ImageAuditRecord pairs one analysis entry with the identity of the asset it
// describes: the original page URL it was fetched from, the base64 payload,
// and the validated content type.
type ImageAuditRecord struct {
	ImageAnalysis
	SourceURL   string `json:"url"`
	Payload     string `json:"payload"`
	ContentType string `json:"contentType"`
}

// AuditResult is the sole output of an audit run.
type AuditResult struct {
	ID        string             `json:"id"`
	PageURL   string             `json:"pageUrl"`
	CreatedAt time.Time          `json:"createdAt"`
	Images    []ImageAuditRecord `json:"images"`
	Summary   PageSummary        `json:"summary"`
}
