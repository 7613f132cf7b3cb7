package service

import "errors"

var (
	// ErrNoActiveRecording is returned by Stop when the slot is empty or holds another question
	ErrNoActiveRecording = errors.New("no active recording for this session and question")
	// ErrUnknownQuestion is returned when a question id is not in the bank
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidSelection is returned for an unknown study or vignette variant
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInvalidAnswer is returned when an answer value cannot be coerced for its question
	ErrInvalidAnswer = errors.New("invalid answer")
)
