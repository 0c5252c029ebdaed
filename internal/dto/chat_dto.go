package dto

import "time"

type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=8000"`
	// DocumentName scopes document Q&A to one document. Empty means all of
	// the user's documents.
	DocumentName string `json:"document_name" validate:"omitempty,max=255"`
	// UseWebSearch answers from a live web lookup instead of documents.
	UseWebSearch bool `json:"use_web_search"`
}

type ChatResponse struct {
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryItem struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	DocumentName string    `json:"document_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Messages []ChatHistoryItem `json:"messages"`
	Total    int64             `json:"total"`
}
