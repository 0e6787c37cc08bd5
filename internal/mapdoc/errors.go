package mapdoc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStoreIDRequired    = errors.New("mapdoc: store id required")
	ErrElementUnresolved  = errors.New("mapdoc: element reference not resolved")
	ErrElementKindInvalid = errors.New("mapdoc: element type is required")
	ErrElementsRequired   = errors.New("mapdoc: elements list is required")
	ErrProductIDsRequired = errors.New("mapdoc: at least one product id is required")
	ErrDocumentInvalid    = errors.New("mapdoc: document payload invalid")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// UnresolvedError carries the reference that failed both id and token
// resolution. Callers should treat it as "the document has not yet been
// saved", not as a hard failure.
type UnresolvedError struct {
	Ref string
}

func (e *UnresolvedError) Error() string {
	if e == nil || strings.TrimSpace(e.Ref) == "" {
		return ErrElementUnresolved.Error()
	}
	return fmt.Sprintf("%s: ref=%s", ErrElementUnresolved.Error(), e.Ref)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrElementUnresolved
}

// ValidationIssue pinpoints one schema violation inside a document payload.
type ValidationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// ValidationError aggregates every issue found in a malformed payload.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrDocumentInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Location != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", issue.Location, issue.Message))
			continue
		}
		parts = append(parts, issue.Message)
	}
	return fmt.Sprintf("%s: %s", ErrDocumentInvalid.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrDocumentInvalid
}
