package generator

// Prompt templates for every kind of tutoring content. Templates are filled
// with fmt.Sprintf; keep the verb order in sync with the callers in
// generator.go.

const tutorSystemPrompt = `You are a patient, encouraging private tutor. Explain concepts clearly,
use concrete examples, and keep a friendly conversational tone. Never mention
that you are following instructions or a curriculum.`

const goalPromptTemplate = `A learner wants to study the topic "%s" at a %s level.
Their stated goal is: %s
Rewrite it as a single concise learning goal sentence describing what they will
be able to do after the lesson. Respond with the goal sentence only.`

const planPromptTemplate = `Create a lesson plan for the topic "%s" for a %s-level learner.
The learning goal is: %s

Respond ONLY with a numbered list of 3 to 6 short sub-topic titles, one per
line, in teaching order. No introduction, no summary, no extra text.`

const explanationPromptTemplate = `You are teaching the topic "%s" to a %s-level learner.
This is step %d of %d of the lesson. Explain the sub-topic below thoroughly but
accessibly, with at least one concrete example. %s

Sub-topic: %s`

const quizPromptTemplate = `Based STRICTLY on the study material below, write exactly %d
multiple-choice questions.

Respond ONLY with a JSON array. Each element must be an object with exactly
these keys:
  "question": the question text,
  "options": an array of exactly 4 answer strings,
  "correct_answer": one string that appears verbatim in "options".

No markdown, no commentary, no keys other than the three above.

Study material:
%s`

const wrongAnswerPromptTemplate = `A learner answered a quiz question incorrectly.

Question: %s
Their answer: %s
Correct answer: %s

In 2-3 sentences, explain why the correct answer is right and gently point out
the misconception behind their choice. Do not repeat the question.`

const documentAnswerPromptTemplate = `Answer the learner's question using ONLY the document excerpts
below. If the excerpts do not contain the answer, say so briefly.
Keep the answer clear and suited to a %s-level learner.

Document excerpts:
%s

Question: %s`

const generalFallbackPromptTemplate = `The learner asked a question but their documents contain nothing
relevant. Answer from general knowledge, suited to a %s-level learner, and
begin your reply with a short note that the answer does not come from their
documents.

Question: %s`

const webAnswerPromptTemplate = `Answer the learner's question using the web page content below.
Be concise and factual. End your answer with a line of the form
"Source: %s".

Web page content:
%s

Question: %s`

const webFallbackPromptTemplate = `The learner asked a question but a web search returned nothing
usable. Answer from your own knowledge and begin with a short disclaimer that
no current web source could be found.

Question: %s`

// levelStyles tunes explanation depth per knowledge level.
var levelStyles = map[string]string{
	"Beginner":     "Assume no prior knowledge and avoid jargon.",
	"Intermediate": "Assume basic familiarity; go one level deeper than an introduction.",
	"Expert":       "Be rigorous and precise; do not oversimplify.",
}
