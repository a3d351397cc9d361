package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRetrievalBlocked  = errors.New("retrieval blocked")
	ErrNoCandidateAssets = errors.New("no candidate assets")
	ErrNoUsableAssets    = errors.New("no usable assets")
	ErrAnalysisContract  = errors.New("analysis contract violation")
	ErrAnalysisEngine    = errors.New("analysis engine failure")
	ErrInvalidPageURL    = errors.New("invalid page url")
)

// RetrievalError reports a page or asset that could not be retrieved through
// the indirection layer. UpstreamStatus is the HTTP status returned by the
// target host, or zero when the indirection service itself was unreachable.
type RetrievalError struct {
	Target         string
	UpstreamStatus int
	Cause          error
}

func (e *RetrievalError) Error() string {
	if e.UpstreamStatus != 0 {
		return fmt.Sprintf("retrieval blocked for %s: upstream status %d", e.Target, e.UpstreamStatus)
	}
	if e.Cause != nil {
		return fmt.Sprintf("retrieval blocked for %s: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("retrieval blocked for %s", e.Target)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrRetrievalBlocked) match a RetrievalError even
// when the wrapped cause is a transport error.
func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalBlocked
}
