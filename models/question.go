package models

// Question defines a single scored item in the assessment questionnaire.
// The bank is compiled in (see services.DefaultQuestionBank), so there is
// no table behind this type.
// IDs are stable across versions; the ordered sequence defines both
// display order and scoring order.
type Question struct {
	ID       int    `json:"id"`       // Unique, stable identifier (1-based)
	Text     string `json:"text"`     // The question text shown to the patient
	Category string `json:"category"` // Category label (e.g., "Mood", "Anxiety")
}

// ConsistencyPattern names a group of question pairs whose answers are
// expected to move together. The pair lists carry assessment semantics and
// must be preserved exactly; changing them changes what the instrument measures.
type ConsistencyPattern struct {
	Name  string   `json:"name"`
	Pairs [][2]int `json:"pairs"` // Pairs of question IDs (1-based)
}

// Likert scale bounds for a single answer.
const (
	AnswerMin = 1
	AnswerMax = 5
)

// ScaleLabels maps Likert values to their display labels.
var ScaleLabels = map[int]string{
	1: "Strongly Disagree",
	2: "Disagree",
	3: "Neutral",
	4: "Agree",
	5: "Strongly Agree",
}
