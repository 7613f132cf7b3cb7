package model

import "time"

// ProfileField names a demographic attribute of a background profile
type ProfileField string

const (
	FieldAge             ProfileField = "age"
	FieldEthnicity       ProfileField = "ethnicity"
	FieldGender          ProfileField = "gender"
	FieldTransgender     ProfileField = "transgender"
	FieldFirstGenStudent ProfileField = "firstGenStudent"
	FieldCSStudent       ProfileField = "csStudent"
	FieldMajor           ProfileField = "major"
)

// Demographics are the fields that determine a profile's identity
type Demographics struct {
	Age             *int     `json:"age,omitempty" bson:"age,omitempty"`
	Ethnicity       []string `json:"ethnicity,omitempty" bson:"ethnicity,omitempty"`
	Gender          string   `json:"gender,omitempty" bson:"gender,omitempty"`
	Transgender     string   `json:"transgender,omitempty" bson:"transgender,omitempty"`
	FirstGenStudent *bool    `json:"firstGenStudent,omitempty" bson:"firstGenStudent,omitempty"`
	CSStudent       *bool    `json:"csStudent,omitempty" bson:"csStudent,omitempty"`
	Major           string   `json:"major,omitempty" bson:"major,omitempty"`
}

// RecordingRef links an EEG recording to a demographic question.
// SessionID names the session that recorded it, since a profile may be shared.
type RecordingRef struct {
	SessionID   string `json:"sessionId" bson:"sessionId"`
	QuestionID  int    `json:"questionId" bson:"questionId"`
	RecordingID string `json:"recordingId" bson:"recordingId"`
}

// BackgroundProfile is a deduplicated demographic profile
type BackgroundProfile struct {
	ID                   string           `json:"id" bson:"_id,omitempty"`
	ProfileHash          string           `json:"profileHash" bson:"profileHash"`
	Demographics         `bson:",inline"`
	TimeSpentOnQuestions map[string]int64 `json:"timeSpentOnQuestions,omitempty" bson:"timeSpentOnQuestions,omitempty"`
	EEGRecordings        []RecordingRef   `json:"eegRecordings,omitempty" bson:"eegRecordings,omitempty"`
	CreatedAt            time.Time        `json:"createdAt" bson:"createdAt"`
}

// ProfileStats is the read-only aggregate served by /background-profiles/stats
type ProfileStats struct {
	Count                   int            `json:"count"`
	AverageAge              float64        `json:"averageAge"`
	GenderDistribution      map[string]int `json:"genderDistribution"`
	EthnicityDistribution   map[string]int `json:"ethnicityDistribution"`
	MajorDistribution       map[string]int `json:"majorDistribution"`
	CSStudentDistribution   map[string]int `json:"csStudentDistribution"`
	FirstGenDistribution    map[string]int `json:"firstGenDistribution"`
	TransgenderDistribution map[string]int `json:"transgenderDistribution"`
}
