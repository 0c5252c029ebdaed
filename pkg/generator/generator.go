// Package generator produces tutoring content (plans, explanations, quizzes,
// answers) on top of a pluggable LLM provider. It owns the prompts and the
// model-tier choice; parsing the results belongs to pkg/lesson.
package generator

import (
	"context"
	"fmt"
	"strings"

	"ai-learning-partner-be/pkg/llm"
	"ai-learning-partner-be/pkg/store"
)

type Generator struct {
	provider llm.LLMProvider
	// model handles explanations and answers; fastModel handles the cheaper
	// structured outputs (quizzes, feedback).
	model     string
	fastModel string
}

func New(provider llm.LLMProvider, model, fastModel string) *Generator {
	if fastModel == "" {
		fastModel = model
	}
	return &Generator{
		provider:  provider,
		model:     model,
		fastModel: fastModel,
	}
}

// LearningGoal rewrites the learner's stated goal as a one-sentence learning
// goal for the topic at the given level.
func (g *Generator) LearningGoal(ctx context.Context, topic, goal, level string) (string, error) {
	prompt := fmt.Sprintf(goalPromptTemplate, topic, level, goal)
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.model))
	if err != nil {
		return "", fmt.Errorf("generate learning goal: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// LessonPlan produces the raw numbered-list plan text for a topic. Callers
// parse it with lesson.ParsePlan.
func (g *Generator) LessonPlan(ctx context.Context, topic, goal, level string) (string, error) {
	prompt := fmt.Sprintf(planPromptTemplate, topic, level, goal)
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.model), llm.WithTemperature(0.4))
	if err != nil {
		return "", fmt.Errorf("generate lesson plan: %w", err)
	}
	return out, nil
}

// StepExplanation teaches one plan step. stepNum is 1-based.
func (g *Generator) StepExplanation(ctx context.Context, topic, subTopic, level string, stepNum, totalSteps int) (string, error) {
	prompt := fmt.Sprintf(explanationPromptTemplate, topic, level, stepNum, totalSteps, levelStyle(level), subTopic)
	out, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: prompt},
	}, llm.WithModel(g.model))
	if err != nil {
		return "", fmt.Errorf("generate explanation: %w", err)
	}
	return out, nil
}

// Quiz produces raw quiz JSON over the given study material on the fast
// model tier. Callers parse it with lesson.ParseQuiz.
func (g *Generator) Quiz(ctx context.Context, numQuestions int, material string) (string, error) {
	prompt := fmt.Sprintf(quizPromptTemplate, numQuestions, material)
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.fastModel), llm.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("generate quiz: %w", err)
	}
	return out, nil
}

// WrongAnswerFeedback explains a missed question on the fast model tier.
func (g *Generator) WrongAnswerFeedback(ctx context.Context, question store.Question, selected string) (string, error) {
	prompt := fmt.Sprintf(wrongAnswerPromptTemplate, question.Text, selected, question.CorrectAnswer)
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.fastModel))
	if err != nil {
		return "", fmt.Errorf("generate answer feedback: %w", err)
	}
	return out, nil
}

// TopicAnswer answers a free-form question, carrying prior conversation so
// follow-ups stay coherent.
func (g *Generator) TopicAnswer(ctx context.Context, history []llm.Message, question, level string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: tutorSystemPrompt + " " + levelStyle(level)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	out, err := g.provider.Chat(ctx, messages, llm.WithModel(g.model))
	if err != nil {
		return "", fmt.Errorf("generate topic answer: %w", err)
	}
	return out, nil
}

// DocumentAnswer answers a question grounded on retrieved document chunks.
// With no chunks it falls back to general knowledge, and the reply says so.
func (g *Generator) DocumentAnswer(ctx context.Context, question string, chunks []string, level string) (string, error) {
	var prompt string
	if len(chunks) == 0 {
		prompt = fmt.Sprintf(generalFallbackPromptTemplate, level, question)
	} else {
		prompt = fmt.Sprintf(documentAnswerPromptTemplate, level, strings.Join(chunks, "\n---\n"), question)
	}
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.model), llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("generate document answer: %w", err)
	}
	return out, nil
}

// WebAnswer answers a question from scraped page content, citing the source
// URL. With no usable page it answers from model knowledge with a disclaimer.
func (g *Generator) WebAnswer(ctx context.Context, question, pageText, sourceURL string) (string, error) {
	fallback := strings.TrimSpace(pageText) == "" || sourceURL == ""

	var prompt string
	if fallback {
		prompt = fmt.Sprintf(webFallbackPromptTemplate, question)
	} else {
		prompt = fmt.Sprintf(webAnswerPromptTemplate, sourceURL, pageText, question)
	}
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.model), llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("generate web answer: %w", err)
	}

	// The citation must be present whether or not the model obeyed.
	if !fallback {
		citation := "Source: " + sourceURL
		if !strings.Contains(out, citation) {
			out = strings.TrimSpace(out) + "\n\n" + citation
		}
	}
	return out, nil
}

func levelStyle(level string) string {
	if style, ok := levelStyles[level]; ok {
		return style
	}
	return levelStyles["Beginner"]
}
