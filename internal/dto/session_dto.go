package dto

type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=GENERAL_TOPIC STUDY_DOCUMENT GUIDED_LESSON"`
	// DocumentName scopes retrieval when switching to document study.
	DocumentName string `json:"document_name" validate:"omitempty,max=255"`
}

type SetLevelRequest struct {
	Level string `json:"level" validate:"required,oneof=Beginner Intermediate Expert"`
}

type SessionResponse struct {
	Mode           string `json:"mode"`
	KnowledgeLevel string `json:"knowledge_level"`
	Phase          string `json:"phase"`
	Topic          string `json:"topic,omitempty"`
	ActiveDocument string `json:"active_document,omitempty"`
}
