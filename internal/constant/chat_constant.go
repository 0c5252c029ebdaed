package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"

	// Generation failures are surfaced to the learner inline rather than as
	// transport errors, so the conversation survives a flaky model call.
	GenerationErrorPrefix = "An error occurred: "

	// UploadDocumentInstruction is the assistant reply when document study is
	// requested but no queryable document exists.
	UploadDocumentInstruction = "Please upload a document to begin."
)
