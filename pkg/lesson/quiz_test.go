package lesson

import (
	"errors"
	"testing"
)

func TestParseQuiz(t *testing.T) {
	valid := `[
		{"question": "What do plants absorb?", "options": ["CO2", "Iron", "Plastic", "Sound"], "correct_answer": "CO2"},
		{"question": "Where does photosynthesis occur?", "options": ["Roots", "Chloroplasts", "Bark", "Soil"], "correct_answer": "Chloroplasts"}
	]`

	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "plain JSON array",
			raw:       valid,
			wantCount: 2,
		},
		{
			name:      "fenced with language tag",
			raw:       "```json\n" + valid + "\n```",
			wantCount: 2,
		},
		{
			name:      "fenced without language tag",
			raw:       "```\n" + valid + "\n```",
			wantCount: 2,
		},
		{
			name:      "questions envelope object",
			raw:       `{"questions": ` + valid + `}`,
			wantCount: 2,
		},
		{
			name:    "prose instead of JSON",
			raw:     "Here are some questions about photosynthesis.",
			wantErr: true,
		},
		{
			name:    "empty array",
			raw:     `[]`,
			wantErr: true,
		},
		{
			name:    "wrong option count",
			raw:     `[{"question": "Q?", "options": ["A", "B"], "correct_answer": "A"}]`,
			wantErr: true,
		},
		{
			name:    "correct answer not among options",
			raw:     `[{"question": "Q?", "options": ["A", "B", "C", "D"], "correct_answer": "E"}]`,
			wantErr: true,
		},
		{
			name:    "question missing text",
			raw:     `[{"question": "  ", "options": ["A", "B", "C", "D"], "correct_answer": "A"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := ParseQuiz(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseQuiz() error = nil, want error")
				}
				if !errors.Is(err, ErrMalformedQuiz) {
					t.Errorf("ParseQuiz() error = %v, want ErrMalformedQuiz", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuiz() error = %v", err)
			}
			if len(questions) != tt.wantCount {
				t.Errorf("ParseQuiz() returned %d questions, want %d", len(questions), tt.wantCount)
			}
		})
	}
}

func TestParseQuizPreservesFields(t *testing.T) {
	raw := `[{"question": "Pick one", "options": ["A", "B", "C", "D"], "correct_answer": "C"}]`
	questions, err := ParseQuiz(raw)
	if err != nil {
		t.Fatalf("ParseQuiz() error = %v", err)
	}
	q := questions[0]
	if q.Text != "Pick one" {
		t.Errorf("Text = %q", q.Text)
	}
	if q.CorrectAnswer != "C" {
		t.Errorf("CorrectAnswer = %q", q.CorrectAnswer)
	}
	if len(q.Options) != 4 || q.Options[2] != "C" {
		t.Errorf("Options = %v", q.Options)
	}
}
