package service

import (
	"context"
	"time"

	"ai-learning-partner-be/internal/constant"
	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/pkg/logger"
	"ai-learning-partner-be/internal/repository/memory"
	"ai-learning-partner-be/internal/repository/specification"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/pkg/embedding"
	"ai-learning-partner-be/pkg/generator"
	"ai-learning-partner-be/pkg/llm"
	"ai-learning-partner-be/pkg/store"
	"ai-learning-partner-be/pkg/websearch"

	"github.com/google/uuid"
)

// historyWindow bounds how much prior conversation is replayed to the model.
const historyWindow = 20

type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ChatHistoryResponse, error)
	ClearHistory(ctx context.Context, userId uuid.UUID) error
}

// WebSearcher is the search capability SendMessage uses; satisfied by
// websearch.Client.
type WebSearcher interface {
	Search(ctx context.Context, query string) (websearch.Result, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	sessions          *memory.SessionRepository
	generator         *generator.Generator
	embeddingProvider embedding.EmbeddingProvider
	webSearch         WebSearcher
	logger            logger.ILogger
	ragTopK           int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionRepository,
	gen *generator.Generator,
	embeddingProvider embedding.EmbeddingProvider,
	webSearch WebSearcher,
	log logger.ILogger,
	ragTopK int,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		sessions:          sessions,
		generator:         gen,
		embeddingProvider: embeddingProvider,
		webSearch:         webSearch,
		logger:            log,
		ragTopK:           ragTopK,
	}
}

// SendMessage answers a free-form question. The answer path depends on the
// request and session mode: web search, document retrieval, or plain topic
// chat. Generation failures are stored and returned as an inline assistant
// message so the conversation survives them.
func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documentName := req.DocumentName
	if documentName == "" && session.Mode == store.ModeStudyDocument {
		documentName = session.ActiveDocument
	}

	userMessage := &entity.ChatMessage{
		Id:        uuid.New(),
		UserId:    userId,
		Role:      constant.ChatMessageRoleUser,
		Content:   req.Message,
		CreatedAt: time.Now(),
	}
	if documentName != "" {
		userMessage.DocumentName = &documentName
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	var reply string
	var err error
	switch {
	case req.UseWebSearch:
		reply, err = s.answerFromWeb(ctx, req.Message)
	case documentName != "" || session.Mode == store.ModeStudyDocument:
		var available bool
		available, err = s.hasQueryableDocument(ctx, uow, userId, documentName)
		switch {
		case err != nil:
		case !available:
			reply = constant.UploadDocumentInstruction
		default:
			reply, err = s.answerFromDocuments(ctx, uow, userId, req.Message, documentName, session.KnowledgeLevel)
		}
	default:
		reply, err = s.answerFromTopic(ctx, uow, userId, req.Message, session.KnowledgeLevel)
	}
	if err != nil {
		s.logger.Error("chat_service", "generation failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		reply = constant.GenerationErrorPrefix + err.Error()
	}

	assistantMessage := &entity.ChatMessage{
		Id:        uuid.New(),
		UserId:    userId,
		Role:      constant.ChatMessageRoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if documentName != "" {
		assistantMessage.DocumentName = &documentName
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	return &dto.ChatResponse{
		Reply:     reply,
		CreatedAt: assistantMessage.CreatedAt,
	}, nil
}

func (s *chatService) answerFromWeb(ctx context.Context, question string) (string, error) {
	result, err := s.webSearch.Search(ctx, question)
	if err != nil {
		s.logger.Warn("chat_service", "web search failed", map[string]interface{}{"error": err.Error()})
		result = websearch.Result{}
	}
	return s.generator.WebAnswer(ctx, question, result.Text, result.URL)
}

// hasQueryableDocument reports whether document study can proceed: the named
// document must exist, or, with no name, the user must own at least one.
func (s *chatService) hasQueryableDocument(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, documentName string) (bool, error) {
	specs := []specification.Specification{specification.UserOwnedBy{UserID: userId}}
	if documentName != "" {
		specs = append(specs, specification.ByDocumentName{Name: documentName})
	}
	doc, err := uow.DocumentRepository().FindOne(ctx, specs...)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

func (s *chatService) answerFromDocuments(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, question, documentName, level string) (string, error) {
	queryEmbedding, err := s.embeddingProvider.Generate(question, embedding.TaskRetrievalQuery)
	if err != nil {
		return "", err
	}

	scored, err := uow.DocumentChunkRepository().SearchSimilar(ctx, queryEmbedding.Embedding.Values, s.ragTopK, userId, documentName)
	if err != nil {
		return "", err
	}

	chunks := make([]string, 0, len(scored))
	for _, sc := range scored {
		chunks = append(chunks, sc.Chunk.Content)
	}

	// Empty retrieval falls through to a general-knowledge answer with a
	// disclaimer rather than a refusal.
	return s.generator.DocumentAnswer(ctx, question, chunks, level)
}

func (s *chatService) answerFromTopic(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, question, level string) (string, error) {
	recent, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow},
	)
	if err != nil {
		return "", err
	}

	// Rows arrive newest first; replay them in conversation order. The just
	// stored user message is skipped, it is passed as the question itself.
	history := make([]llm.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 1; i-- {
		m := recent[i]
		role := constant.ChatMessageRoleUser
		if m.Role == constant.ChatMessageRoleAssistant {
			role = constant.ChatMessageRoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}

	return s.generator.TopicAnswer(ctx, history, question, level)
}

func (s *chatService) History(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ChatHistoryResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ChatMessageRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChatHistoryResponse{
		Messages: make([]dto.ChatHistoryItem, 0, len(messages)),
		Total:    total,
	}
	for _, m := range messages {
		item := dto.ChatHistoryItem{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if m.DocumentName != nil {
			item.DocumentName = *m.DocumentName
		}
		resp.Messages = append(resp.Messages, item)
	}
	return resp, nil
}

func (s *chatService) ClearHistory(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().DeleteByUserId(ctx, userId)
}
