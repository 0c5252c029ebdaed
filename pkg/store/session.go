package store

// Phase is the single guided-learning phase a session is in. Exactly one
// phase is active at a time; transitions go through lesson.Machine.
const (
	PhaseLobby        = "LOBBY"
	PhaseTeaching     = "TEACHING"
	PhaseMiniQuizzing = "MINI_QUIZZING"
	PhaseFinalQuiz    = "FINAL_QUIZ"
	PhaseDone         = "DONE"
	PhaseEnded        = "ENDED"
	PhaseFreeChat     = "FREE_CHAT"
)

// Learning modes selected by the user.
const (
	ModeGeneralTopic  = "GENERAL_TOPIC"
	ModeStudyDocument = "STUDY_DOCUMENT"
	ModeGuidedLesson  = "GUIDED_LESSON"
)

// Knowledge levels adjust generated explanation depth. The level is
// session-scoped: it resets with the session and is never persisted.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelExpert       = "Expert"
)

// Question is one multiple-choice quiz question as recovered from the
// generator's JSON output.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuizState tracks an in-flight quiz. Answered marks the sub-state between
// submitting an answer and advancing: feedback must render before the next
// question is shown.
type QuizState struct {
	Questions []Question `json:"questions"`
	Index     int        `json:"index"`
	Score     int        `json:"score"`
	Answered  bool       `json:"answered"`
}

// Current returns the active question, or nil when the quiz is exhausted.
func (q *QuizState) Current() *Question {
	if q == nil || q.Index >= len(q.Questions) {
		return nil
	}
	return &q.Questions[q.Index]
}

// LearnerSession is the per-user mutable session state held in memory.
// Lifecycle is one interactive session; it is destroyed on reset or expiry.
type LearnerSession struct {
	UserID         string `json:"user_id"`
	Mode           string `json:"mode"`
	KnowledgeLevel string `json:"knowledge_level"`
	Phase          string `json:"phase"`

	// Guided lesson state
	Topic     string   `json:"topic"`
	GoalText  string   `json:"goal_text"`
	GoalID    string   `json:"goal_id"`
	Plan      []string `json:"plan"`
	StepIndex int      `json:"step_index"`

	// Quiz state (mini or final, depending on Phase)
	Quiz *QuizState `json:"quiz"`

	// LastExplanation is the most recent sub-topic explanation; mini quizzes
	// are scoped to it. Explanations accumulates every explanation of the
	// lesson for the final review quiz.
	LastExplanation string   `json:"last_explanation"`
	Explanations    []string `json:"explanations"`

	// ActiveDocument scopes document Q&A retrieval when set.
	ActiveDocument string `json:"active_document"`
}

// NewLearnerSession returns a fresh session in the lobby.
func NewLearnerSession(userID string) *LearnerSession {
	return &LearnerSession{
		UserID:         userID,
		Mode:           ModeGeneralTopic,
		KnowledgeLevel: LevelBeginner,
		Phase:          PhaseLobby,
	}
}
