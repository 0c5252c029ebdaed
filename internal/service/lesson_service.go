package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-learning-partner-be/internal/constant"
	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/pkg/logger"
	"ai-learning-partner-be/internal/repository/memory"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/pkg/events"
	"ai-learning-partner-be/pkg/generator"
	"ai-learning-partner-be/pkg/lesson"
	pktNats "ai-learning-partner-be/pkg/nats"
	"ai-learning-partner-be/pkg/store"

	"github.com/google/uuid"
)

const (
	miniQuizQuestions  = 2
	finalQuizQuestions = 5
)

type ILessonService interface {
	Start(ctx context.Context, userId uuid.UUID, req *dto.StartLessonRequest) (*dto.StartLessonResponse, error)
	Quiz(ctx context.Context, userId uuid.UUID) (*dto.QuizResponse, error)
	Answer(ctx context.Context, userId uuid.UUID, req *dto.AnswerRequest) (*dto.AnswerResponse, error)
	Continue(ctx context.Context, userId uuid.UUID) (*dto.ContinueLessonResponse, error)
	FinalQuiz(ctx context.Context, userId uuid.UUID) (*dto.QuizResponse, error)
	End(ctx context.Context, userId uuid.UUID) (*dto.EndLessonResponse, error)
	State(ctx context.Context, userId uuid.UUID) (*dto.LessonStateResponse, error)
}

type lessonService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessions       *memory.SessionRepository
	generator      *generator.Generator
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewLessonService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionRepository,
	gen *generator.Generator,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ILessonService {
	return &lessonService{
		uowFactory:     uowFactory,
		sessions:       sessions,
		generator:      gen,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Start builds a lesson from the learner's topic and goal: a refined goal
// sentence, an ordered plan, and the first step's explanation. The goal is
// persisted so progress survives session expiry; the session only moves into
// teaching once every generated piece has parsed.
func (s *lessonService) Start(ctx context.Context, userId uuid.UUID, req *dto.StartLessonRequest) (*dto.StartLessonResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	level := session.KnowledgeLevel

	if strings.TrimSpace(req.Topic) == "" {
		return nil, lesson.ErrTopicRequired
	}
	if strings.TrimSpace(req.Goal) == "" {
		return nil, lesson.ErrGoalRequired
	}

	refinedGoal, err := s.generator.LearningGoal(ctx, req.Topic, req.Goal, level)
	if err != nil {
		return nil, err
	}

	planRaw, err := s.generator.LessonPlan(ctx, req.Topic, refinedGoal, level)
	if err != nil {
		return nil, err
	}
	plan, err := lesson.ParsePlan(planRaw)
	if err != nil {
		return nil, err
	}

	if err := lesson.Start(session, req.Topic, req.Goal, plan); err != nil {
		return nil, err
	}

	explanation, err := s.generator.StepExplanation(ctx, session.Topic, plan[0], level, 1, len(plan))
	if err != nil {
		// Roll the session back to where it was; a failed first step must
		// not leave a half-started lesson behind.
		lesson.End(session)
		s.sessions.Save(session)
		return nil, err
	}
	if err := lesson.RecordExplanation(session, explanation); err != nil {
		return nil, err
	}

	goal := &entity.LearningGoal{
		Id:         uuid.New(),
		UserId:     userId,
		Topic:      session.Topic,
		GoalText:   session.GoalText,
		TotalSteps: len(plan),
		CreatedAt:  time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LearningGoalRepository().Create(ctx, goal); err != nil {
		// Without a persisted goal there is nothing to track progress
		// against; roll the session back instead of teaching untracked.
		lesson.End(session)
		s.sessions.Save(session)
		return nil, err
	}
	session.GoalID = goal.Id.String()
	session.Mode = store.ModeGuidedLesson
	s.sessions.Save(session)

	s.recordAssistantMessage(ctx, uow, userId, explanation)

	return &dto.StartLessonResponse{
		Topic:       session.Topic,
		Goal:        session.GoalText,
		RefinedGoal: refinedGoal,
		Plan:        plan,
		Explanation: explanation,
		StepIndex:   session.StepIndex,
		TotalSteps:  len(plan),
	}, nil
}

// Quiz generates the mini quiz for the step just taught. Malformed model
// output fails the request and leaves the session in teaching, so the
// learner can simply ask again.
func (s *lessonService) Quiz(ctx context.Context, userId uuid.UUID) (*dto.QuizResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	if session.Phase != store.PhaseTeaching {
		return nil, lesson.ErrInvalidPhase
	}
	if session.LastExplanation == "" {
		return nil, lesson.ErrInvalidPhase
	}

	questions, err := s.generateQuiz(ctx, miniQuizQuestions, session.LastExplanation)
	if err != nil {
		return nil, err
	}
	if err := lesson.BeginMiniQuiz(session, questions); err != nil {
		return nil, err
	}
	s.sessions.Save(session)

	return quizResponse(entity.QuizKindMini, session), nil
}

// FinalQuiz generates the end-of-lesson quiz over everything taught. The
// lesson has to be done first; the phase is checked before spending a model
// call on generation.
func (s *lessonService) FinalQuiz(ctx context.Context, userId uuid.UUID) (*dto.QuizResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	switch session.Phase {
	case store.PhaseDone:
	case store.PhaseTeaching, store.PhaseMiniQuizzing:
		return nil, lesson.ErrStepsRemaining
	default:
		return nil, lesson.ErrInvalidPhase
	}

	material := strings.Join(session.Explanations, "\n\n")
	questions, err := s.generateQuiz(ctx, finalQuizQuestions, material)
	if err != nil {
		return nil, err
	}
	if err := lesson.BeginFinalQuiz(session, questions); err != nil {
		return nil, err
	}
	s.sessions.Save(session)

	return quizResponse(entity.QuizKindFinal, session), nil
}

func (s *lessonService) generateQuiz(ctx context.Context, n int, material string) ([]store.Question, error) {
	raw, err := s.generator.Quiz(ctx, n, material)
	if err != nil {
		return nil, err
	}
	questions, err := lesson.ParseQuiz(raw)
	if err != nil {
		s.logger.Warn("lesson_service", "quiz output did not parse", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	return questions, nil
}

// Answer grades the current quiz question. A wrong answer comes back with
// generated feedback; exhausting the quiz records the attempt and, for the
// final quiz, completes the goal.
func (s *lessonService) Answer(ctx context.Context, userId uuid.UUID, req *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	quizPhase := session.Phase
	if quizPhase != store.PhaseMiniQuizzing && quizPhase != store.PhaseFinalQuiz {
		return nil, lesson.ErrInvalidPhase
	}

	question := session.Quiz.Current()
	if question == nil {
		return nil, lesson.ErrInvalidPhase
	}
	correct, err := lesson.SubmitAnswer(session, req.Answer)
	if err != nil {
		return nil, err
	}

	resp := &dto.AnswerResponse{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
	}
	if !correct {
		feedback, fbErr := s.generator.WrongAnswerFeedback(ctx, *question, req.Answer)
		if fbErr != nil {
			s.logger.Warn("lesson_service", "feedback generation failed", map[string]interface{}{"error": fbErr.Error()})
		} else {
			resp.Feedback = feedback
		}
	}

	finished, err := lesson.Advance(session)
	if err != nil {
		return nil, err
	}
	resp.QuizFinished = finished
	resp.Score = session.Quiz.Score
	resp.Total = len(session.Quiz.Questions)

	if finished {
		if err := s.finishQuiz(ctx, userId, session, quizPhase, resp); err != nil {
			return nil, err
		}
	}
	s.sessions.Save(session)

	return resp, nil
}

// finishQuiz persists the attempt snapshot and advances goal progress.
func (s *lessonService) finishQuiz(ctx context.Context, userId uuid.UUID, session *store.LearnerSession, quizPhase string, resp *dto.AnswerResponse) error {
	kind := entity.QuizKindMini
	if quizPhase == store.PhaseFinalQuiz {
		kind = entity.QuizKindFinal
	}

	snapshot, err := json.Marshal(session.Quiz.Questions)
	if err != nil {
		return err
	}

	attempt := &entity.QuizAttempt{
		Id:        uuid.New(),
		UserId:    userId,
		Kind:      kind,
		Questions: snapshot,
		Score:     session.Quiz.Score,
		Total:     len(session.Quiz.Questions),
		CreatedAt: time.Now(),
	}

	var goalId uuid.UUID
	if session.GoalID != "" {
		parsed, parseErr := uuid.Parse(session.GoalID)
		if parseErr == nil {
			goalId = parsed
			attempt.GoalId = &parsed
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QuizAttemptRepository().Create(ctx, attempt); err != nil {
		return err
	}

	if goalId == uuid.Nil {
		return nil
	}

	switch kind {
	case entity.QuizKindMini:
		if err := uow.LearningGoalRepository().UpdateProgress(ctx, goalId, session.StepIndex); err != nil {
			return err
		}
		// The last mini quiz completes the goal; the final quiz is a review.
		if lesson.PlanComplete(session) {
			resp.LessonComplete = true
			if s.eventPublisher != nil {
				evt := events.NewGoalCompletedEvent(userId.String(), goalId.String(), session.Topic, attempt.Score, attempt.Total)
				if err := s.eventPublisher.Publish(ctx, evt); err != nil {
					s.logger.Warn("lesson_service", "failed to publish goal event", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	case entity.QuizKindFinal:
		resp.LessonComplete = true
	}
	return nil
}

// Continue teaches the next plan step after a finished mini quiz. Once the
// plan is exhausted the lesson is done and continue signals readiness for the
// final quiz instead.
func (s *lessonService) Continue(ctx context.Context, userId uuid.UUID) (*dto.ContinueLessonResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	if session.Phase == store.PhaseDone {
		return &dto.ContinueLessonResponse{
			StepIndex:    session.StepIndex,
			TotalSteps:   len(session.Plan),
			PlanComplete: true,
		}, nil
	}
	if session.Phase != store.PhaseTeaching {
		return nil, lesson.ErrInvalidPhase
	}

	step := session.Plan[session.StepIndex]
	explanation, err := s.generator.StepExplanation(ctx, session.Topic, step, session.KnowledgeLevel, session.StepIndex+1, len(session.Plan))
	if err != nil {
		return nil, err
	}
	if err := lesson.RecordExplanation(session, explanation); err != nil {
		return nil, err
	}
	s.sessions.Save(session)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	s.recordAssistantMessage(ctx, uow, userId, explanation)

	return &dto.ContinueLessonResponse{
		Explanation: explanation,
		StepIndex:   session.StepIndex,
		TotalSteps:  len(session.Plan),
	}, nil
}

// End leaves the lesson and returns the session to the lobby, clearing the
// plan and the transcript. Progress already persisted stays.
func (s *lessonService) End(ctx context.Context, userId uuid.UUID) (*dto.EndLessonResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())
	if session.Phase == store.PhaseLobby || session.Phase == store.PhaseFreeChat {
		return nil, lesson.ErrInvalidPhase
	}
	lesson.End(session)
	s.sessions.Save(session)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().DeleteByUserId(ctx, userId); err != nil {
		s.logger.Warn("lesson_service", "failed to clear transcript", map[string]interface{}{"error": err.Error()})
	}
	return &dto.EndLessonResponse{Phase: session.Phase}, nil
}

func (s *lessonService) State(ctx context.Context, userId uuid.UUID) (*dto.LessonStateResponse, error) {
	session := s.sessions.GetOrCreate(userId.String())

	resp := &dto.LessonStateResponse{
		Phase:          session.Phase,
		Topic:          session.Topic,
		Goal:           session.GoalText,
		Plan:           session.Plan,
		StepIndex:      session.StepIndex,
		TotalSteps:     len(session.Plan),
		StepsCompleted: lesson.StepsCompleted(session),
	}
	if session.Quiz != nil {
		resp.Score = session.Quiz.Score
		if q := session.Quiz.Current(); q != nil {
			resp.Question = &dto.QuizQuestionView{
				Question: q.Text,
				Options:  q.Options,
				Index:    session.Quiz.Index,
				Total:    len(session.Quiz.Questions),
			}
		}
	}
	return resp, nil
}

func quizResponse(kind string, session *store.LearnerSession) *dto.QuizResponse {
	q := session.Quiz.Current()
	return &dto.QuizResponse{
		Kind: kind,
		Question: dto.QuizQuestionView{
			Question: q.Text,
			Options:  q.Options,
			Index:    session.Quiz.Index,
			Total:    len(session.Quiz.Questions),
		},
	}
}

// recordAssistantMessage appends lesson output to the chat transcript. The
// transcript is a convenience; failures are logged, never surfaced.
func (s *lessonService) recordAssistantMessage(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, content string) {
	msg := &entity.ChatMessage{
		Id:        uuid.New(),
		UserId:    userId,
		Role:      constant.ChatMessageRoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		s.logger.Warn("lesson_service", "failed to record transcript message", map[string]interface{}{"error": err.Error()})
	}
}
