package domain

// Status represents the lifecycle states of a store map document.
type Status string

const (
	// StatusDraft indicates the document carries edits not yet visible to consumers.
	StatusDraft Status = "draft"
	// StatusPublished identifies a document whose current elements are all live.
	StatusPublished Status = "published"
)
