// Package questionbank holds the static questionnaire, the vignettes, and the
// table that routes demographic answers onto background profile fields.
package questionbank

import (
	"fmt"

	"rscasurvey/internal/model"
)

// VignetteQuestionID tags the recording taken while the vignette is read.
// It must not collide with any id in the bank.
const VignetteQuestionID = 100

var agreement = []string{
	"Strongly Disagree",
	"Disagree",
	"Somewhat Disagree",
	"Neutral",
	"Somewhat Agree",
	"Agree",
	"Strongly Agree",
}

func likert(sub, text string) model.Question {
	return model.Question{Section: model.SectionBelonging, Subsection: sub, Text: text, Type: model.QuestionTypeLikert, Options: agreement}
}

func course(text string) model.Question {
	return model.Question{Section: model.SectionCourseSpecific, Text: text, Type: model.QuestionTypeLikert, Options: agreement}
}

func feedback(text string) model.Question {
	return model.Question{Section: model.SectionFeedback, Text: text, Type: model.QuestionTypeText}
}

var questions = []model.Question{
	likert("membership", "I feel that I belong to the computer science community"),
	likert("membership", "I consider myself a member of the computer science world"),
	likert("membership", "I feel like I am part of the computer science community"),
	likert("membership", "I feel a connection with the computer science community"),

	likert("acceptance_positive", "I feel accepted"),
	likert("acceptance_positive", "I feel respected by my peers and instructors"),
	likert("acceptance_positive", "I feel valued in the classroom environment"),
	likert("acceptance_positive", "I feel appreciated for my contributions"),

	likert("acceptance_negative", "I feel disregarded"),
	likert("acceptance_negative", "I feel neglected by my peers or instructors"),
	likert("acceptance_negative", "I feel excluded from group activities or discussions"),
	likert("acceptance_negative", "I feel insignificant in this course"),

	likert("emotional_response", "I feel at ease when participating in this course"),
	likert("emotional_response", "I feel anxious about my performance in this class"),
	likert("emotional_response", "I feel comfortable asking questions in lectures, labs and contributing to discussions"),
	likert("emotional_response", "I feel tense during class activities or exams"),
	likert("emotional_response", "I feel calm in the learning environment"),

	likert("trust_in_instructors", "Even when I do poorly, I trust my instructors to have faith in my potential"),
	likert("trust_in_instructors", "I trust my instructors to be committed to helping me learn"),
	likert("trust_in_instructors", "I believe I don't have to constantly prove myself to succeed in this course"),
	likert("trust_in_instructors", "I trust that the testing and grading materials are unbiased"),
	likert("trust_in_instructors", "I feel supported by the instructor in this course"),
	likert("trust_in_instructors", "I enjoy the content and structure of the course."),

	course("I feel confident in my ability to understand programming concepts taught in this course"),
	{
		Section: model.SectionCourseSpecific,
		Text:    "I have previous experience in programming before taking this course",
		Type:    model.QuestionTypeMultipleChoice,
		Options: []string{
			"Formal coursework (high school/other college)",
			"Self-taught (online tutorials, personal projects)",
			"Both formal and self-taught",
			"No prior experience",
		},
	},
	course("I expect to perform well on the assignments and exams in this course"),
	course("I believe I can solve complex programming problems in Python, even if they require effort and time"),
	course("I feel comfortable understanding Python concepts like loops, conditionals, and functions"),
	course("I am comfortable using development tools (IDEs, text editors) for Python programming"),
	course("I feel comfortable asking questions during class or seeking help from classmates and instructors"),
	course("I believe I will be successful in this course based on the way the material is presented"),
	course("I feel prepared to handle the programming assignments and tasks required in this Python course"),
	course("I expect to encounter challenges in this course, but I believe there is enough support available (e.g., from instructors, peers, or resources)"),

	{
		Section: model.SectionParsons,
		Text:    "Create a program that iterates over a list of fruits and prints each fruit.",
		Type:    model.QuestionTypeParsons,
		Options: []string{
			`my_list = ["apple", "banana", "cherry"]`,
			"print(fruit)",
			"for fruit in my_list:",
		},
		CorrectOrder: []string{
			`my_list = ["apple", "banana", "cherry"]`,
			"for fruit in my_list:",
			"print(fruit)",
		},
		Required: true,
	},
	{
		Section: model.SectionParsons,
		Text:    "Given a list of numbers, create a new list that contains only the even numbers using a for loop and an if statement. Finally, print the new list.",
		Type:    model.QuestionTypeParsons,
		Options: []string{
			"nums = [1, 2, 3, 4, 5, 6]",
			"even_nums.append(num)",
			"for num in nums:",
			"even_nums = []",
			"if num % 2 == 0:",
			"print(even_nums)",
		},
		CorrectOrder: []string{
			"nums = [1, 2, 3, 4, 5, 6]",
			"even_nums = []",
			"for num in nums:",
			"if num % 2 == 0:",
			"even_nums.append(num)",
			"print(even_nums)",
		},
		Required: true,
	},
	{
		Section: model.SectionParsons,
		Text:    "Using a while loop, iterate over the list and print each element.",
		Type:    model.QuestionTypeParsons,
		Options: []string{
			`items = ["a", "b", "c", "d"]`,
			"while i < len(items):",
			"i = 0",
			"print(items[i])",
			"i += 1",
		},
		CorrectOrder: []string{
			`items = ["a", "b", "c", "d"]`,
			"i = 0",
			"while i < len(items):",
			"print(items[i])",
			"i += 1",
		},
		Required: true,
	},
	{
		Section: model.SectionParsons,
		Text:    `Write a program that counts how many times the word "apple" appears in a list of words, then prints the count.`,
		Type:    model.QuestionTypeParsons,
		Options: []string{
			`words = ["apple", "banana", "apple", "cherry", "apple"]`,
			"for word in words:",
			"count = 0",
			`if word == "apple":`,
			"count += 1",
			"print(count)",
		},
		CorrectOrder: []string{
			`words = ["apple", "banana", "apple", "cherry", "apple"]`,
			"count = 0",
			"for word in words:",
			`if word == "apple":`,
			"count += 1",
			"print(count)",
		},
		Required: true,
	},

	{Section: model.SectionDemographic, Text: "What is your age?", Type: model.QuestionTypeNumber, Required: true},
	{
		Section: model.SectionDemographic,
		Text:    "What is your race/ethnicity? Check all that apply.",
		Type:    model.QuestionTypeMultipleSelect,
		Options: []string{
			"Hispanic or Latino",
			"Not Hispanic or Latino",
			"American Indian or Alaska Native",
			"Asian",
			"Black or African American",
			"Native Hawaiian or Other Pacific Islander",
			"White",
			"East Asian",
			"South Asian",
			"Southeast Asian",
			"Other Asian",
			"Filipina/o/x",
			"Indigenous / Aboriginal Identity",
			"Mexican American or Chicano/a/x",
			"Puerto Rican",
			"Central American",
			"Other Latino/a/x",
			"Race/ethnicity unknown",
		},
		Required: true,
	},
	{
		Section: model.SectionDemographic,
		Text:    "What is your gender?",
		Type:    model.QuestionTypeMultipleChoice,
		Options: []string{
			"Man",
			"Woman",
			"Non-binary",
			"Genderqueer or gender non-conforming",
			"Another identity not listed",
			"I'd rather not say",
		},
	},
	{
		Section: model.SectionDemographic,
		Text:    "Do you identify as transgender?",
		Type:    model.QuestionTypeMultipleChoice,
		Options: []string{"No", "Yes", "I'd rather not say"},
	},
	{Section: model.SectionDemographic, Text: "Are you a first-generation college student?", Type: model.QuestionTypeBoolean},
	{Section: model.SectionDemographic, Text: "Are you a Computer Science major?", Type: model.QuestionTypeBoolean},
	{Section: model.SectionDemographic, Text: "If you stated that you are not a Computer Science major, please indicate your major", Type: model.QuestionTypeText},

	feedback("Is there anything we could improve in terms of the study procedure or instructions?"),
	feedback("Were there any aspects of the study you found challenging or uncomfortable? Please explain."),
	feedback("Do you have any suggestions for improving the experience of wearing the EEG cap?"),
	feedback("Were there any parts of the study you particularly enjoyed or found interesting? If so, please share."),
	feedback("Please feel free to share any additional comments or feedback about your overall experience."),
}

// Questions returns a fresh copy of the bank with ids assigned 1..N in bank order
func Questions() []model.Question {
	out := make([]model.Question, len(questions))
	for i, q := range questions {
		q.ID = i + 1
		q.Options = append([]string(nil), q.Options...)
		q.CorrectOrder = append([]string(nil), q.CorrectOrder...)
		out[i] = q
	}
	return out
}

// Validate checks that ids are unique and none collides with the vignette sentinel
func Validate(qs []model.Question) error {
	seen := make(map[int]bool, len(qs))
	for _, q := range qs {
		if q.ID == VignetteQuestionID {
			return fmt.Errorf("question id %d collides with the vignette sentinel", q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
	}
	for qid := range DemographicFields {
		if !seen[qid] {
			return fmt.Errorf("demographic field mapped to unknown question %d", qid)
		}
	}
	return nil
}
