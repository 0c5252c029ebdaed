package dto

type StartLessonRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=255"`
	Goal  string `json:"goal" validate:"required,min=2,max=500"`
}

type StartLessonResponse struct {
	Topic string `json:"topic"`
	Goal  string `json:"goal"`
	// RefinedGoal is the model's one-sentence rewrite of the learner's goal;
	// it steers plan generation but the learner's own words are what persist.
	RefinedGoal string   `json:"refined_goal"`
	Plan        []string `json:"plan"`
	Explanation string   `json:"explanation"`
	StepIndex   int      `json:"step_index"`
	TotalSteps  int      `json:"total_steps"`
}

// QuizQuestionView is the learner-facing shape of a question. The correct
// answer never leaves the server before the question is answered.
type QuizQuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Index    int      `json:"index"`
	Total    int      `json:"total"`
}

type QuizResponse struct {
	Kind     string           `json:"kind"`
	Question QuizQuestionView `json:"question"`
}

type AnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type AnswerResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Feedback      string `json:"feedback,omitempty"`
	QuizFinished  bool   `json:"quiz_finished"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	// LessonComplete is set when a finished final quiz completes the goal.
	LessonComplete bool `json:"lesson_complete"`
}

type ContinueLessonResponse struct {
	Explanation  string `json:"explanation,omitempty"`
	StepIndex    int    `json:"step_index"`
	TotalSteps   int    `json:"total_steps"`
	PlanComplete bool   `json:"plan_complete"`
}

type LessonStateResponse struct {
	Phase          string            `json:"phase"`
	Topic          string            `json:"topic,omitempty"`
	Goal           string            `json:"goal,omitempty"`
	Plan           []string          `json:"plan,omitempty"`
	StepIndex      int               `json:"step_index"`
	TotalSteps     int               `json:"total_steps"`
	StepsCompleted int               `json:"steps_completed"`
	Question       *QuizQuestionView `json:"question,omitempty"`
	Score          int               `json:"score"`
}

type EndLessonResponse struct {
	Phase string `json:"phase"`
}
