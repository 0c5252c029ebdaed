package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-learning-partner-be/internal/constant"
	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/repository/contract"
	"ai-learning-partner-be/internal/repository/memory"
	"ai-learning-partner-be/pkg/embedding"
	"ai-learning-partner-be/pkg/generator"
	"ai-learning-partner-be/pkg/llm"
	"ai-learning-partner-be/pkg/store"
	"ai-learning-partner-be/pkg/websearch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingProvider struct {
	lastTask string
}

func (f *fakeEmbeddingProvider) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	f.lastTask = taskType
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeWebSearcher struct {
	result websearch.Result
	err    error
}

func (f *fakeWebSearcher) Search(ctx context.Context, query string) (websearch.Result, error) {
	return f.result, f.err
}

// erroringProvider fails every generation call.
type erroringProvider struct{}

func (erroringProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", errors.New("model unavailable")
}
func (erroringProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestChatService(provider llm.LLMProvider, web WebSearcher) (IChatService, *fakeUow, *fakeEmbeddingProvider, *memory.SessionRepository) {
	uow := newFakeUow()
	sessions := memory.NewSessionRepository()
	embedder := &fakeEmbeddingProvider{}
	gen := generator.New(provider, "test-model", "test-model-fast")
	svc := NewChatService(uow, sessions, gen, embedder, web, noopLogger{}, 10)
	return svc, uow, embedder, sessions
}

func lastMessage(t *testing.T, uow *fakeUow) *entity.ChatMessage {
	t.Helper()
	require.NotEmpty(t, uow.messages.created)
	return uow.messages.created[len(uow.messages.created)-1]
}

func TestSendMessageTopicBranch(t *testing.T) {
	svc, uow, embedder, _ := newTestChatService(&scriptedProvider{}, &fakeWebSearcher{})
	userId := uuid.New()

	res, err := svc.SendMessage(context.Background(), userId, &dto.ChatRequest{Message: "Why is the sky blue?"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reply)

	// User question and assistant reply both land in the transcript; no
	// retrieval happened.
	require.Len(t, uow.messages.created, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, uow.messages.created[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, uow.messages.created[1].Role)
	assert.Empty(t, embedder.lastTask)
}

func TestSendMessageStudyModeWithoutDocument(t *testing.T) {
	svc, uow, embedder, sessions := newTestChatService(&scriptedProvider{}, &fakeWebSearcher{})
	userId := uuid.New()

	session := sessions.GetOrCreate(userId.String())
	session.Mode = store.ModeStudyDocument
	sessions.Save(session)

	res, err := svc.SendMessage(context.Background(), userId, &dto.ChatRequest{Message: "What does chapter 2 say?"})
	require.NoError(t, err)
	assert.Equal(t, constant.UploadDocumentInstruction, res.Reply)
	assert.Equal(t, constant.UploadDocumentInstruction, lastMessage(t, uow).Content)

	// No embedding call was wasted on an empty library.
	assert.Empty(t, embedder.lastTask)
}

func TestSendMessageDocumentBranch(t *testing.T) {
	svc, uow, embedder, _ := newTestChatService(&scriptedProvider{}, &fakeWebSearcher{})
	userId := uuid.New()

	doc := &entity.Document{Id: uuid.New(), UserId: userId, Name: "biology.pdf", Status: entity.DocumentStatusReady}
	uow.documents.docs = append(uow.documents.docs, doc)
	uow.chunks.scored = []*contract.ScoredChunk{
		{Chunk: &entity.DocumentChunk{DocumentId: doc.Id, Content: "chloroplasts capture light"}, Similarity: 0.9},
	}

	res, err := svc.SendMessage(context.Background(), userId, &dto.ChatRequest{
		Message:      "Where does photosynthesis happen?",
		DocumentName: "biology.pdf",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reply)
	assert.Equal(t, embedding.TaskRetrievalQuery, embedder.lastTask)

	// The transcript records which document the exchange was scoped to.
	msg := lastMessage(t, uow)
	require.NotNil(t, msg.DocumentName)
	assert.Equal(t, "biology.pdf", *msg.DocumentName)
}

func TestSendMessageNamedDocumentMissing(t *testing.T) {
	svc, _, embedder, _ := newTestChatService(&scriptedProvider{}, &fakeWebSearcher{})
	userId := uuid.New()

	res, err := svc.SendMessage(context.Background(), userId, &dto.ChatRequest{
		Message:      "What does it say?",
		DocumentName: "nonexistent.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.UploadDocumentInstruction, res.Reply)
	assert.Empty(t, embedder.lastTask)
}

func TestSendMessageWebBranch(t *testing.T) {
	web := &fakeWebSearcher{result: websearch.Result{Text: "article body", URL: "https://example.org/article"}}
	svc, _, _, _ := newTestChatService(&scriptedProvider{}, web)
	userId := uuid.New()

	res, err := svc.SendMessage(context.Background(), userId, &dto.ChatRequest{
		Message:      "What happened today?",
		UseWebSearch: true,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Source: https://example.org/article")
}

func TestSendMessageGenerationErrorIsInline(t *testing.T) {
	svc, uow, _, _ := newTestChatService(erroringProvider{}, &fakeWebSearcher{})
	userId := uuid.New()

	res, err := svc.SendMessage(context.Background(), userId, &dto.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, constant.GenerationErrorPrefix), "reply = %q", res.Reply)

	// The failed exchange still survives in the transcript.
	assert.Equal(t, res.Reply, lastMessage(t, uow).Content)
}
