package model

// Option is one answer choice of a question
type Option struct {
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

// Question is the content presented to players. It is replaced wholesale
// on every new question and never mutated.
type Question struct {
	Text      string   `json:"text"`
	Options   []Option `json:"options"`
	TimeLimit int      `json:"timeLimit,omitempty"` // seconds, 0 when absent
}

// HasOption reports whether text matches one of the options
func (q *Question) HasOption(text string) bool {
	for _, o := range q.Options {
		if o.Text == text {
			return true
		}
	}
	return false
}

// withoutAnswers returns a copy with correctness flags removed
func (q *Question) withoutAnswers() *Question {
	cp := &Question{
		Text:      q.Text,
		TimeLimit: q.TimeLimit,
		Options:   make([]Option, len(q.Options)),
	}
	for i, o := range q.Options {
		cp.Options[i] = Option{Text: o.Text}
	}
	return cp
}
