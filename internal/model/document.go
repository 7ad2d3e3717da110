package model

// Document is the core text entity managed by the repository.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Summary *string  `json:"summary"`
	Rating  *int     `json:"rating"`
}

// DocumentInput carries the client-supplied fields of a document.
// It deliberately has no ID: identifiers are always server-assigned, and any
// id present in a request payload is ignored.
type DocumentInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Summary *string  `json:"summary"`
	Rating  *int     `json:"rating"`
}
