package model

import "time"

// StudyType selects which question blocks a participant sees
type StudyType string

const (
	StudyWithParsons    StudyType = "withParsons"
	StudyWithoutParsons StudyType = "withoutParsons"
)

// Valid reports whether s is one of the known study variants
func (s StudyType) Valid() bool {
	return s == StudyWithParsons || s == StudyWithoutParsons
}

// VignetteType is the narrative shown before questioning begins
type VignetteType string

const (
	VignetteFixed   VignetteType = "fixed"
	VignetteGrowth  VignetteType = "growth"
	VignetteControl VignetteType = "control"
)

// Valid reports whether v is one of the three fixed vignettes
func (v VignetteType) Valid() bool {
	return v == VignetteFixed || v == VignetteGrowth || v == VignetteControl
}

// Session is one participant's run through the questionnaire
type Session struct {
	ID                  string       `json:"-" bson:"_id,omitempty"`
	SessionID           string       `json:"sessionId" bson:"sessionId"`
	StartTime           time.Time    `json:"startTime" bson:"startTime"`
	EndTime             *time.Time   `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Completed           bool         `json:"completed" bson:"completed"`
	SurveyType          StudyType    `json:"surveyType,omitempty" bson:"surveyType,omitempty"`
	VignetteType        VignetteType `json:"vignetteType,omitempty" bson:"vignetteType,omitempty"`
	BackgroundProfile   string       `json:"backgroundProfile,omitempty" bson:"backgroundProfile,omitempty"`
	VignetteRecordingID string       `json:"vignetteRecordingId,omitempty" bson:"vignetteRecordingId,omitempty"`
	Answers             []Answer     `json:"answers" bson:"answers"`
}

// SessionUpdate carries the metadata accepted by PUT /sessions/{id}
type SessionUpdate struct {
	SurveyType   StudyType    `json:"surveyType,omitempty"`
	VignetteType VignetteType `json:"vignetteType,omitempty"`
}

// Empty reports whether the update carries no fields
func (u SessionUpdate) Empty() bool {
	return u.SurveyType == "" && u.VignetteType == ""
}

// SessionView is a session with its background profile expanded
type SessionView struct {
	*Session
	BackgroundProfile *BackgroundProfile `json:"backgroundProfile,omitempty"`
}

// CreateSessionResponse is returned by POST /sessions
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}
