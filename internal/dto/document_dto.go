package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type UploadDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
	// AlreadyExists marks a re-upload of the same file name; the existing
	// document is returned untouched.
	AlreadyExists bool `json:"already_exists"`
}

type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

type IngestYouTubeRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type DownloadDocumentResponse struct {
	URL string `json:"url"`
}

// PublishEmbedDocumentMessage is the payload queued for the embedding
// consumer after a document's chunks are stored.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
