// Package lesson implements the guided-lesson state machine and the parsers
// that turn generated model output into plans and quizzes. The package is
// pure: it never talks to storage or a model provider, it only mutates the
// session handed to it.
package lesson

import (
	"errors"
	"strings"

	"ai-learning-partner-be/pkg/store"
)

var (
	// ErrInvalidPhase is returned when an operation is attempted in a phase
	// that does not permit it.
	ErrInvalidPhase = errors.New("lesson: operation not valid in current phase")
	// ErrTopicRequired is returned when a lesson is started without a topic.
	ErrTopicRequired = errors.New("lesson: topic is required")
	// ErrGoalRequired is returned when a lesson is started without a goal.
	ErrGoalRequired = errors.New("lesson: goal is required")
	// ErrEmptyPlan is returned when a generated plan contains no steps.
	ErrEmptyPlan = errors.New("lesson: plan has no steps")
	// ErrEmptyQuiz is returned when a generated quiz contains no questions.
	ErrEmptyQuiz = errors.New("lesson: quiz has no questions")
	// ErrQuizAlreadyAnswered is returned when the current question already
	// has a recorded answer and is waiting to be advanced.
	ErrQuizAlreadyAnswered = errors.New("lesson: current question already answered")
	// ErrQuizNotAnswered is returned when advancing a quiz whose current
	// question has not been answered yet.
	ErrQuizNotAnswered = errors.New("lesson: current question not answered yet")
	// ErrStepsRemaining is returned when a final quiz is requested before
	// every plan step has been taught.
	ErrStepsRemaining = errors.New("lesson: plan steps remain before the final quiz")
)

// Start moves a session from the lobby into teaching the first plan step.
// The session must not already be inside a lesson.
func Start(s *store.LearnerSession, topic, goalText string, plan []string) error {
	switch s.Phase {
	case store.PhaseLobby, store.PhaseFreeChat, store.PhaseDone, store.PhaseEnded:
	default:
		return ErrInvalidPhase
	}
	if strings.TrimSpace(topic) == "" {
		return ErrTopicRequired
	}
	if strings.TrimSpace(goalText) == "" {
		return ErrGoalRequired
	}
	if len(plan) == 0 {
		return ErrEmptyPlan
	}

	s.Topic = strings.TrimSpace(topic)
	s.GoalText = strings.TrimSpace(goalText)
	s.Plan = plan
	s.StepIndex = 0
	s.Quiz = nil
	s.LastExplanation = ""
	s.Explanations = nil
	s.Phase = store.PhaseTeaching
	return nil
}

// RecordExplanation stores the explanation for the current step so a mini
// quiz can be scoped to it, and accumulates it for the final quiz.
func RecordExplanation(s *store.LearnerSession, explanation string) error {
	if s.Phase != store.PhaseTeaching {
		return ErrInvalidPhase
	}
	s.LastExplanation = explanation
	s.Explanations = append(s.Explanations, explanation)
	return nil
}

// BeginMiniQuiz starts a mini quiz over the most recently taught step.
func BeginMiniQuiz(s *store.LearnerSession, questions []store.Question) error {
	if s.Phase != store.PhaseTeaching {
		return ErrInvalidPhase
	}
	if len(questions) == 0 {
		return ErrEmptyQuiz
	}
	s.Quiz = &store.QuizState{Questions: questions}
	s.Phase = store.PhaseMiniQuizzing
	return nil
}

// BeginFinalQuiz starts the end-of-lesson review quiz. It is only reachable
// once the plan is done: requesting it while steps remain reports how far the
// learner still has to go.
func BeginFinalQuiz(s *store.LearnerSession, questions []store.Question) error {
	switch s.Phase {
	case store.PhaseDone:
	case store.PhaseTeaching, store.PhaseMiniQuizzing:
		return ErrStepsRemaining
	default:
		return ErrInvalidPhase
	}
	if len(questions) == 0 {
		return ErrEmptyQuiz
	}
	s.Quiz = &store.QuizState{Questions: questions}
	s.Phase = store.PhaseFinalQuiz
	return nil
}

// SubmitAnswer grades the answer to the current question. The question is
// marked answered; the quiz does not move on until Advance is called, so the
// caller can render feedback first.
func SubmitAnswer(s *store.LearnerSession, answer string) (correct bool, err error) {
	if s.Phase != store.PhaseMiniQuizzing && s.Phase != store.PhaseFinalQuiz {
		return false, ErrInvalidPhase
	}
	q := s.Quiz.Current()
	if q == nil {
		return false, ErrInvalidPhase
	}
	if s.Quiz.Answered {
		return false, ErrQuizAlreadyAnswered
	}
	s.Quiz.Answered = true
	correct = strings.TrimSpace(answer) == q.CorrectAnswer
	if correct {
		s.Quiz.Score++
	}
	return correct, nil
}

// Advance moves past an answered question. When the quiz is exhausted the
// session leaves the quiz phase: a finished mini quiz completes the step and
// returns to teaching, or marks the lesson done when it was the last step; a
// finished final quiz ends the lesson with its score.
func Advance(s *store.LearnerSession) (finished bool, err error) {
	if s.Phase != store.PhaseMiniQuizzing && s.Phase != store.PhaseFinalQuiz {
		return false, ErrInvalidPhase
	}
	if s.Quiz == nil || s.Quiz.Current() == nil {
		return false, ErrInvalidPhase
	}
	if !s.Quiz.Answered {
		return false, ErrQuizNotAnswered
	}
	s.Quiz.Answered = false
	s.Quiz.Index++
	if s.Quiz.Current() != nil {
		return false, nil
	}

	if s.Phase == store.PhaseFinalQuiz {
		s.Phase = store.PhaseEnded
		return true, nil
	}
	// Mini quiz done: this step is complete.
	s.StepIndex++
	if s.StepIndex >= len(s.Plan) {
		s.Phase = store.PhaseDone
	} else {
		s.Phase = store.PhaseTeaching
	}
	return true, nil
}

// StepsCompleted reports how many plan steps the learner has finished. It is
// monotone within a lesson: a step counts once its mini quiz is done.
func StepsCompleted(s *store.LearnerSession) int {
	return s.StepIndex
}

// PlanComplete reports whether every step has been taught and quizzed.
func PlanComplete(s *store.LearnerSession) bool {
	return len(s.Plan) > 0 && s.StepIndex >= len(s.Plan)
}

// End terminates the lesson from any phase and returns the session to the
// lobby. All lesson state is discarded; persisted goal progress is untouched.
func End(s *store.LearnerSession) {
	s.Quiz = nil
	s.Plan = nil
	s.StepIndex = 0
	s.Topic = ""
	s.GoalText = ""
	s.GoalID = ""
	s.LastExplanation = ""
	s.Explanations = nil
	s.Phase = store.PhaseLobby
}
