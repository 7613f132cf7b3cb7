package model

import "time"

// EEGRecording is the persisted result of one stop-recording call
type EEGRecording struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	SessionID  string    `json:"sessionId" bson:"sessionId"`
	QuestionID int       `json:"questionId" bson:"questionId"`
	FilePath   string    `json:"filePath" bson:"filePath"`
	StartedAt  time.Time `json:"startedAt" bson:"startedAt"`
	RecordedAt time.Time `json:"recordedAt" bson:"recordedAt"`
}

// RecorderSlot describes the single active recording, if any
type RecorderSlot struct {
	SessionID  string    `json:"sessionId"`
	QuestionID int       `json:"questionId"`
	FilePath   string    `json:"filePath"`
	StartedAt  time.Time `json:"startedAt"`
}
