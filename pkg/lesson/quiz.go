package lesson

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-learning-partner-be/pkg/store"
)

// ErrMalformedQuiz is wrapped by ParseQuiz when model output cannot be
// decoded into a valid quiz. Callers treat it as a retryable generation
// failure; the session never advances on malformed output.
var ErrMalformedQuiz = fmt.Errorf("lesson: malformed quiz output")

// quizEnvelope tolerates the model wrapping the question list in an object.
type quizEnvelope struct {
	Questions []store.Question `json:"questions"`
}

// ParseQuiz decodes model output into quiz questions. The output must be a
// JSON array of {question, options, correct_answer} objects (a code fence
// around it is stripped). Each question needs exactly four options and a
// correct answer that is one of them; anything less fails parsing outright.
func ParseQuiz(raw string) ([]store.Question, error) {
	cleaned := stripCodeFence(raw)

	var questions []store.Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		var env quizEnvelope
		if err2 := json.Unmarshal([]byte(cleaned), &env); err2 != nil || len(env.Questions) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
		}
		questions = env.Questions
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrMalformedQuiz)
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrMalformedQuiz, i+1)
		}
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("%w: question %d has %d options, want 4", ErrMalformedQuiz, i+1, len(q.Options))
		}
		if !containsOption(q.Options, q.CorrectAnswer) {
			return nil, fmt.Errorf("%w: question %d correct answer not among options", ErrMalformedQuiz, i+1)
		}
	}
	return questions, nil
}

func containsOption(options []string, answer string) bool {
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag, leaving the fenced body.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 && !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
		// Drop the language tag line (e.g. "json").
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
