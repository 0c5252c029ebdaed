package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/repository/contract"
	"ai-learning-partner-be/internal/repository/memory"
	"ai-learning-partner-be/internal/repository/specification"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/pkg/generator"
	"ai-learning-partner-be/pkg/lesson"
	"ai-learning-partner-be/pkg/llm"
	"ai-learning-partner-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// scriptedProvider answers generation requests by recognizing the prompt
// kind, the way the real model is instructed to.
type scriptedProvider struct {
	brokenQuiz bool
}

const miniQuizJSON = `[
	{"question": "What gas do plants absorb?", "options": ["CO2", "O2", "N2", "He"], "correct_answer": "CO2"},
	{"question": "Where does photosynthesis happen?", "options": ["Roots", "Chloroplasts", "Bark", "Soil"], "correct_answer": "Chloroplasts"}
]`

func finalQuizJSON() string {
	items := make([]string, 5)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question": "Review question %d?", "options": ["A", "B", "C", "D"], "correct_answer": "A"}`, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	prompt := history[len(history)-1].Content
	switch {
	case strings.Contains(prompt, "learning goal sentence"):
		return "Understand how plants turn light into chemical energy.", nil
	case strings.Contains(prompt, "numbered list"):
		return "1. Light-dependent reactions\n2. The Calvin cycle", nil
	case strings.Contains(prompt, "multiple-choice questions"):
		if p.brokenQuiz {
			return "Sorry, here are some thoughts about quizzes instead.", nil
		}
		if strings.Contains(prompt, "exactly 5") {
			return "```json\n" + finalQuizJSON() + "\n```", nil
		}
		return miniQuizJSON, nil
	case strings.Contains(prompt, "answered a quiz question incorrectly"):
		return "The key detail is that chloroplasts host the reaction.", nil
	default:
		return "Here is a thorough explanation of the sub-topic.", nil
	}
}

// fakeUow is an in-memory unit of work covering the repositories the lesson
// flow touches.
type fakeUow struct {
	goals     *fakeGoalRepo
	attempts  *fakeAttemptRepo
	messages  *fakeChatRepo
	documents *fakeDocumentRepo
	chunks    *fakeChunkRepo
	users     *fakeUserRepo
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		goals:     &fakeGoalRepo{progress: map[uuid.UUID]int{}},
		attempts:  &fakeAttemptRepo{},
		messages:  &fakeChatRepo{},
		documents: &fakeDocumentRepo{},
		chunks:    &fakeChunkRepo{},
		users:     &fakeUserRepo{},
	}
}

func (f *fakeUow) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f }

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) UserRepository() contract.UserRepository                   { return f.users }
func (f *fakeUow) ChatMessageRepository() contract.ChatMessageRepository     { return f.messages }
func (f *fakeUow) DocumentRepository() contract.DocumentRepository           { return f.documents }
func (f *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository { return f.chunks }
func (f *fakeUow) LearningGoalRepository() contract.LearningGoalRepository   { return f.goals }
func (f *fakeUow) QuizAttemptRepository() contract.QuizAttemptRepository     { return f.attempts }

type fakeGoalRepo struct {
	created   []*entity.LearningGoal
	progress  map[uuid.UUID]int
	createErr error
}

func (r *fakeGoalRepo) Create(ctx context.Context, goal *entity.LearningGoal) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, goal)
	return nil
}
func (r *fakeGoalRepo) Update(ctx context.Context, goal *entity.LearningGoal) error { return nil }
func (r *fakeGoalRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LearningGoal, error) {
	return nil, nil
}
func (r *fakeGoalRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LearningGoal, error) {
	return nil, nil
}
func (r *fakeGoalRepo) UpdateProgress(ctx context.Context, goalId uuid.UUID, stepCount int) error {
	if stepCount > r.progress[goalId] {
		r.progress[goalId] = stepCount
	}
	return nil
}

type fakeAttemptRepo struct {
	created []*entity.QuizAttempt
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *entity.QuizAttempt) error {
	r.created = append(r.created, attempt)
	return nil
}
func (r *fakeAttemptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error) {
	return nil, nil
}

type fakeChatRepo struct {
	created []*entity.ChatMessage
}

func (r *fakeChatRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.created = append(r.created, message)
	return nil
}
func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}
func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeChatRepo) DeleteByUserId(ctx context.Context, userId uuid.UUID) error { return nil }

func newTestLessonService(provider llm.LLMProvider) (ILessonService, *fakeUow, *memory.SessionRepository) {
	uow := newFakeUow()
	sessions := memory.NewSessionRepository()
	gen := generator.New(provider, "test-model", "test-model-fast")
	svc := NewLessonService(uow, sessions, gen, nil, noopLogger{})
	return svc, uow, sessions
}

// answerQuiz submits answers until the current quiz finishes.
func answerQuiz(t *testing.T, svc ILessonService, userId uuid.UUID, answers []string) *dto.AnswerResponse {
	t.Helper()
	var last *dto.AnswerResponse
	for _, a := range answers {
		resp, err := svc.Answer(context.Background(), userId, &dto.AnswerRequest{Answer: a})
		require.NoError(t, err)
		last = resp
	}
	require.True(t, last.QuizFinished, "quiz should be finished after all answers")
	return last
}

// --- Tests ---

func TestLessonFullFlow(t *testing.T) {
	svc, uow, sessions := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()
	ctx := context.Background()

	// Start: goal + 2-step plan + first explanation.
	started, err := svc.Start(ctx, userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "pass a quiz"})
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", started.Topic)
	assert.Equal(t, "pass a quiz", started.Goal)
	assert.NotEmpty(t, started.RefinedGoal)
	assert.Len(t, started.Plan, 2)
	assert.NotEmpty(t, started.Explanation)
	require.Len(t, uow.goals.created, 1)
	assert.Equal(t, "pass a quiz", uow.goals.created[0].GoalText)
	assert.Equal(t, 2, uow.goals.created[0].TotalSteps)
	goalId := uow.goals.created[0].Id

	session, _ := sessions.Get(userId.String())
	assert.Equal(t, store.PhaseTeaching, session.Phase)

	// Step 1 mini quiz: one right, one wrong.
	quiz, err := svc.Quiz(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, entity.QuizKindMini, quiz.Kind)
	assert.Equal(t, 2, quiz.Question.Total)
	assert.NotContains(t, quiz.Question.Options, "", "options must be populated")

	resp, err := svc.Answer(ctx, userId, &dto.AnswerRequest{Answer: "CO2"})
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.False(t, resp.QuizFinished)

	resp, err = svc.Answer(ctx, userId, &dto.AnswerRequest{Answer: "Roots"})
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Equal(t, "Chloroplasts", resp.CorrectAnswer)
	assert.NotEmpty(t, resp.Feedback)
	assert.True(t, resp.QuizFinished)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, uow.goals.progress[goalId])

	// Step 2: continue, quiz, perfect score.
	cont, err := svc.Continue(ctx, userId)
	require.NoError(t, err)
	assert.NotEmpty(t, cont.Explanation)
	assert.False(t, cont.PlanComplete)

	_, err = svc.Quiz(ctx, userId)
	require.NoError(t, err)
	lastMini := answerQuiz(t, svc, userId, []string{"CO2", "Chloroplasts"})
	assert.Equal(t, 2, uow.goals.progress[goalId])
	assert.True(t, lastMini.LessonComplete, "last mini quiz completes the goal")

	session, _ = sessions.Get(userId.String())
	assert.Equal(t, store.PhaseDone, session.Phase)

	// Plan exhausted: continue reports completion instead of teaching.
	cont, err = svc.Continue(ctx, userId)
	require.NoError(t, err)
	assert.True(t, cont.PlanComplete)
	assert.Empty(t, cont.Explanation)

	// Final quiz over everything.
	final, err := svc.FinalQuiz(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, entity.QuizKindFinal, final.Kind)
	assert.Equal(t, 5, final.Question.Total)

	last := answerQuiz(t, svc, userId, []string{"A", "A", "A", "A", "A"})
	assert.True(t, last.LessonComplete)
	assert.Equal(t, 5, last.Score)

	session, _ = sessions.Get(userId.String())
	assert.Equal(t, store.PhaseEnded, session.Phase)

	// Two mini attempts and one final attempt were recorded.
	require.Len(t, uow.attempts.created, 3)
	assert.Equal(t, entity.QuizKindFinal, uow.attempts.created[2].Kind)
	assert.Equal(t, &goalId, uow.attempts.created[2].GoalId)
}

func TestStartRequiresGoal(t *testing.T) {
	svc, uow, sessions := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()

	_, err := svc.Start(context.Background(), userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "  "})
	assert.ErrorIs(t, err, lesson.ErrGoalRequired)
	assert.Empty(t, uow.goals.created)

	session, _ := sessions.Get(userId.String())
	assert.Equal(t, store.PhaseLobby, session.Phase)
}

func TestStartGoalPersistFailureRollsBack(t *testing.T) {
	svc, uow, sessions := newTestLessonService(&scriptedProvider{})
	uow.goals.createErr = fmt.Errorf("connection reset")
	userId := uuid.New()

	_, err := svc.Start(context.Background(), userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "pass a quiz"})
	require.Error(t, err)

	// The session must not be left teaching an untracked lesson.
	session, _ := sessions.Get(userId.String())
	assert.Equal(t, store.PhaseLobby, session.Phase)
	assert.Empty(t, session.Plan)
}

func TestQuizParseFailureKeepsTeachingPhase(t *testing.T) {
	svc, _, sessions := newTestLessonService(&scriptedProvider{brokenQuiz: true})
	userId := uuid.New()
	ctx := context.Background()

	_, err := svc.Start(ctx, userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "pass a quiz"})
	require.NoError(t, err)

	_, err = svc.Quiz(ctx, userId)
	require.Error(t, err)
	assert.ErrorIs(t, err, lesson.ErrMalformedQuiz)

	// The session did not move; the learner can retry.
	session, _ := sessions.Get(userId.String())
	assert.Equal(t, store.PhaseTeaching, session.Phase)
	assert.Nil(t, session.Quiz)
}

func TestQuizRequiresTeachingPhase(t *testing.T) {
	svc, _, _ := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()

	_, err := svc.Quiz(context.Background(), userId)
	assert.ErrorIs(t, err, lesson.ErrInvalidPhase)
}

func TestAnswerOutsideQuizRejected(t *testing.T) {
	svc, _, _ := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()

	_, err := svc.Answer(context.Background(), userId, &dto.AnswerRequest{Answer: "A"})
	assert.ErrorIs(t, err, lesson.ErrInvalidPhase)
}

func TestFinalQuizBeforePlanCompleteRejected(t *testing.T) {
	svc, _, _ := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()
	ctx := context.Background()

	_, err := svc.Start(ctx, userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "pass a quiz"})
	require.NoError(t, err)

	_, err = svc.FinalQuiz(ctx, userId)
	assert.ErrorIs(t, err, lesson.ErrStepsRemaining)
}

func TestEndLesson(t *testing.T) {
	svc, _, sessions := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()
	ctx := context.Background()

	// Ending with nothing running is rejected.
	_, err := svc.End(ctx, userId)
	assert.ErrorIs(t, err, lesson.ErrInvalidPhase)

	_, err = svc.Start(ctx, userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "pass a quiz"})
	require.NoError(t, err)

	resp, err := svc.End(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, store.PhaseLobby, resp.Phase)

	session, _ := sessions.Get(userId.String())
	assert.Nil(t, session.Quiz)
	assert.Empty(t, session.Plan)
}

func TestStateReportsQuizQuestion(t *testing.T) {
	svc, _, _ := newTestLessonService(&scriptedProvider{})
	userId := uuid.New()
	ctx := context.Background()

	_, err := svc.Start(ctx, userId, &dto.StartLessonRequest{Topic: "Photosynthesis", Goal: "pass a quiz"})
	require.NoError(t, err)
	_, err = svc.Quiz(ctx, userId)
	require.NoError(t, err)

	state, err := svc.State(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, store.PhaseMiniQuizzing, state.Phase)
	require.NotNil(t, state.Question)
	assert.Equal(t, 0, state.Question.Index)
	assert.Len(t, state.Question.Options, 4)
}
