package model

import "time"

// Attachment binds a document to its single stored PDF blob.
// StorageName is the object key in blob storage; it is always derived from a
// server-generated identifier, never from client input.
type Attachment struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	StorageName string    `json:"storage_name"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
