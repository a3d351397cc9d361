package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"visualaudit/internal/domain"
)

type createAuditReq struct {
	URL string `json:"url"`
}

type auditErrorResp struct {
	Category string `json:"category"`
	Error    string `json:"error"`
}

// CreateAudit runs the full audit pipeline for the submitted page URL and
// returns the result. Terminal pipeline errors map to short, categorized
// messages so callers can decide between "try a different URL" and "try
// again" without inspecting error internals.
func (a *App) CreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		a.json(w, http.StatusBadRequest, auditErrorResp{
			Category: "invalid_request",
			Error:    "Request body must be JSON with a non-empty \"url\" field.",
		})
		return
	}

	ctx := r.Context()
	if a.AuditTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.AuditTimeout)
		defer cancel()
	}

	result, err := a.Audits.Audit(ctx, req.URL)
	if err != nil {
		a.Logger.Warn().Err(err).Str("page_url", req.URL).Msg("audit failed")
		status, resp := mapAuditError(err)
		a.json(w, status, resp)
		return
	}

	a.json(w, http.StatusOK, result)
}

func mapAuditError(err error) (int, auditErrorResp) {
	switch {
	case errors.Is(err, domain.ErrInvalidPageURL):
		return http.StatusBadRequest, auditErrorResp{
			Category: "invalid_url",
			Error:    "Invalid URL. Enter an absolute http or https address (e.g. https://example.com).",
		}
	case errors.Is(err, domain.ErrRetrievalBlocked):
		return http.StatusBadGateway, auditErrorResp{
			Category: "retrieval_blocked",
			Error:    "The page could not be retrieved; the site may be blocking automated access. Try a different URL.",
		}
	case errors.Is(err, domain.ErrNoCandidateAssets):
		return http.StatusUnprocessableEntity, auditErrorResp{
			Category: "no_candidate_assets",
			Error:    "No analyzable images were found on that page.",
		}
	case errors.Is(err, domain.ErrNoUsableAssets):
		return http.StatusUnprocessableEntity, auditErrorResp{
			Category: "no_usable_assets",
			Error:    "None of the page's images could be downloaded in a supported format.",
		}
	case errors.Is(err, domain.ErrAnalysisContract), errors.Is(err, domain.ErrAnalysisEngine):
		return http.StatusBadGateway, auditErrorResp{
			Category: "analysis_failed",
			Error:    "The analysis engine returned an unusable response. Try again.",
		}
	default:
		return http.StatusInternalServerError, auditErrorResp{
			Category: "internal",
			Error:    "Unexpected error while auditing the page.",
		}
	}
}
