package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-learning-partner-be/pkg/llm"
	"ai-learning-partner-be/pkg/store"
)

// fakeProvider records the last request and replies with canned output.
type fakeProvider struct {
	lastPrompt  string
	lastHistory []llm.Message
	lastOptions llm.Options
	reply       string
	err         error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.lastHistory = history
	if len(history) > 0 {
		f.lastPrompt = history[len(history)-1].Content
	}
	f.lastOptions = llm.Options{}
	for _, opt := range opts {
		opt(&f.lastOptions)
	}
	return f.reply, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestQuizUsesFastModel(t *testing.T) {
	fake := &fakeProvider{reply: "[]"}
	g := New(fake, "big-model", "small-model")

	if _, err := g.Quiz(context.Background(), 2, "material"); err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if fake.lastOptions.Model != "small-model" {
		t.Errorf("Quiz model = %q, want small-model", fake.lastOptions.Model)
	}
	if !strings.Contains(fake.lastPrompt, "exactly 2") {
		t.Errorf("prompt missing question count: %q", fake.lastPrompt)
	}
	if !strings.Contains(fake.lastPrompt, "material") {
		t.Errorf("prompt missing study material")
	}
}

func TestFastModelDefaultsToMainModel(t *testing.T) {
	fake := &fakeProvider{reply: "ok"}
	g := New(fake, "only-model", "")

	q := store.Question{Text: "Q", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "A"}
	if _, err := g.WrongAnswerFeedback(context.Background(), q, "B"); err != nil {
		t.Fatal(err)
	}
	if fake.lastOptions.Model != "only-model" {
		t.Errorf("model = %q, want only-model", fake.lastOptions.Model)
	}
}

func TestDocumentAnswer(t *testing.T) {
	tests := []struct {
		name       string
		chunks     []string
		wantInText string
	}{
		{
			name:       "with retrieved chunks",
			chunks:     []string{"chunk one", "chunk two"},
			wantInText: "chunk two",
		},
		{
			name:       "empty retrieval falls back to general knowledge",
			chunks:     nil,
			wantInText: "does not come from their\ndocuments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{reply: "answer"}
			g := New(fake, "m", "m")
			if _, err := g.DocumentAnswer(context.Background(), "what?", tt.chunks, store.LevelBeginner); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(fake.lastPrompt, tt.wantInText) {
				t.Errorf("prompt = %q, want it to contain %q", fake.lastPrompt, tt.wantInText)
			}
		})
	}
}

func TestWebAnswer(t *testing.T) {
	// The citation is appended even when the model ignores the instruction.
	fake := &fakeProvider{reply: "answer without a citation"}
	g := New(fake, "m", "m")

	out, err := g.WebAnswer(context.Background(), "q", "page body", "https://example.org/a")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "Source: https://example.org/a") {
		t.Errorf("answer missing source citation: %q", out)
	}

	// A model that already cited does not get a second citation line.
	fake.reply = "answer\n\nSource: https://example.org/a"
	out, err = g.WebAnswer(context.Background(), "q", "page body", "https://example.org/a")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "Source: https://example.org/a") != 1 {
		t.Errorf("citation duplicated: %q", out)
	}

	// Fallback answers carry no citation at all.
	fake.reply = "fallback answer"
	out, err = g.WebAnswer(context.Background(), "q", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(fake.lastPrompt, "disclaimer") {
		t.Errorf("fallback prompt missing disclaimer instruction: %q", fake.lastPrompt)
	}
	if strings.Contains(out, "Source:") {
		t.Errorf("fallback answer should not cite a source: %q", out)
	}
}

func TestTopicAnswerCarriesHistory(t *testing.T) {
	fake := &fakeProvider{reply: "answer"}
	g := New(fake, "m", "m")

	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	if _, err := g.TopicAnswer(context.Background(), history, "follow-up", store.LevelExpert); err != nil {
		t.Fatal(err)
	}
	// system + 2 history + new question
	if len(fake.lastHistory) != 4 {
		t.Fatalf("history length = %d, want 4", len(fake.lastHistory))
	}
	if fake.lastHistory[0].Role != "system" {
		t.Errorf("first message role = %q, want system", fake.lastHistory[0].Role)
	}
	if !strings.Contains(fake.lastHistory[0].Content, levelStyles[store.LevelExpert]) {
		t.Errorf("system prompt missing expert style")
	}
}

func TestProviderErrorsPropagate(t *testing.T) {
	fake := &fakeProvider{err: errors.New("boom")}
	g := New(fake, "m", "m")

	if _, err := g.LessonPlan(context.Background(), "topic", "goal", store.LevelBeginner); err == nil {
		t.Fatal("LessonPlan() error = nil, want error")
	}
}
