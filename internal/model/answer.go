package model

// Answer is a participant's response to one question of a session.
// Answer holds a string, number, bool or list of strings depending on the question type.
type Answer struct {
	QuestionID     int         `json:"questionId" bson:"questionId"`
	Answer         interface{} `json:"answer" bson:"answer"`
	TimeSpent      int64       `json:"timeSpent" bson:"timeSpent"` // milliseconds
	EEGRecordingID string      `json:"eegRecordingId,omitempty" bson:"eegRecordingId,omitempty"`
}

// SubmitAnswerRequest is the body of POST /sessions/{id}/answers
type SubmitAnswerRequest struct {
	QuestionID int         `json:"questionId"`
	Answer     interface{} `json:"answer"`
	TimeSpent  int64       `json:"timeSpent"`
}

// UpsertAnswer replaces the entry for a.QuestionID in place, or appends it when absent.
// The recording link of a replaced entry survives resubmission.
func UpsertAnswer(answers []Answer, a Answer) []Answer {
	for i := range answers {
		if answers[i].QuestionID == a.QuestionID {
			if a.EEGRecordingID == "" {
				a.EEGRecordingID = answers[i].EEGRecordingID
			}
			answers[i] = a
			return answers
		}
	}
	return append(answers, a)
}
