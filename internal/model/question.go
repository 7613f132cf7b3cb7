package model

// Section groups questions into blocks of the questionnaire
type Section string

const (
	SectionBelonging      Section = "belonging"
	SectionCourseSpecific Section = "course_specific"
	SectionParsons        Section = "parsons"
	SectionDemographic    Section = "demographic"
	SectionFeedback       Section = "feedback"
)

// QuestionType governs how a question is rendered and what shape its answer has
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeNumber         QuestionType = "number"
	QuestionTypeLikert         QuestionType = "likert"
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeMultipleSelect QuestionType = "multiple-select"
	QuestionTypeBoolean        QuestionType = "boolean"
	QuestionTypeParsons        QuestionType = "parsons-problem"
)

// Question is a single entry of the question bank
type Question struct {
	ID           int          `json:"id" bson:"id"`
	Section      Section      `json:"section" bson:"section"`
	Subsection   string       `json:"subsection,omitempty" bson:"subsection,omitempty"`
	Text         string       `json:"text" bson:"text"`
	Type         QuestionType `json:"type" bson:"type"`
	Options      []string     `json:"options,omitempty" bson:"options,omitempty"`
	CorrectOrder []string     `json:"correctOrder,omitempty" bson:"correctOrder,omitempty"`
	Required     bool         `json:"required,omitempty" bson:"required,omitempty"`
}

// IsDemographic reports whether answers to q belong on a background profile
func (q *Question) IsDemographic() bool {
	return q.Section == SectionDemographic
}
