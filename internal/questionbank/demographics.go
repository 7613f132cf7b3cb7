package questionbank

import "rscasurvey/internal/model"

// DemographicFields maps demographic question ids onto profile fields.
// Ids follow the bank order in Questions.
var DemographicFields = map[int]model.ProfileField{
	38: model.FieldAge,
	39: model.FieldEthnicity,
	40: model.FieldGender,
	41: model.FieldTransgender,
	42: model.FieldFirstGenStudent,
	43: model.FieldCSStudent,
	44: model.FieldMajor,
}

// FieldFor returns the profile field a question's answer is routed to
func FieldFor(questionID int) (model.ProfileField, bool) {
	f, ok := DemographicFields[questionID]
	return f, ok
}
