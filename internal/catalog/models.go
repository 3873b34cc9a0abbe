package catalog

import "time"

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Text       string `json:"optionText"`
	IsCorrect  bool   `json:"isCorrect"`
	Ord        int    `json:"-"`
}

type Question struct {
	ID      string   `json:"id"`
	QuizID  string   `json:"quizId"`
	Text    string   `json:"questionText"`
	Points  int      `json:"points"`
	Ord     int      `json:"-"`
	Options []Option `json:"options,omitempty"`
}

// Quiz owns its questions, which own their options. Question and option
// order is insertion order, carried by ord.
type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TimeLimitMin int        `json:"timeLimit"`
	Active       bool       `json:"active"`
	ExaminerID   string     `json:"examinerId"`
	CreatedAt    time.Time  `json:"createdAt"`
	Questions    []Question `json:"questions,omitempty"`

	// Filled on list reads only.
	QuestionCount int `json:"questionCount,omitempty"`
}

// RedactedOption is the taker-facing view of an option. The answer key
// is absent from the wire shape, not just zeroed.
type RedactedOption struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Text       string `json:"optionText"`
}

func (o Option) Redacted() RedactedOption {
	return RedactedOption{ID: o.ID, QuestionID: o.QuestionID, Text: o.Text}
}
