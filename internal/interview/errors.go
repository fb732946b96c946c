package interview

import (
	"errors"
	"fmt"
)

// Terminal link errors. The flow ends and only a "return home" action remains.
var (
	ErrInvalidLink  = errors.New("invalid interview link")
	ErrExpiredLink  = errors.New("interview link has expired")
	ErrInactiveLink = errors.New("interview link is inactive")
)

// ErrCompatibilityRejected ends the flow when the candidate does not match the job.
// It is not a fault, but it is presented like the terminal errors.
var ErrCompatibilityRejected = errors.New("your profile does not match the job requirements")

// Flow misuse errors returned by Transition and the Controller.
var (
	ErrBusy               = errors.New("another action is in progress")
	ErrFlowFinished       = errors.New("interview flow is finished")
	ErrIllegalTransition  = errors.New("illegal stage transition")
	ErrNotCompatible      = errors.New("match analysis does not allow to continue")
	ErrMissingResumeText  = errors.New("resume text is required")
	ErrMissingInterviewID = errors.New("interview is not known for this link")
)

// ResumeAnalysisError is a recoverable failure of the resume submission step.
type ResumeAnalysisError struct {
	Err error
}

func (e *ResumeAnalysisError) Error() string {
	return fmt.Sprintf("resume analysis failed: %v", e.Err)
}

func (e *ResumeAnalysisError) Unwrap() error { return e.Err }

// QuestionGenerationError is a recoverable failure to generate interview questions.
type QuestionGenerationError struct {
	Err error
}

func (e *QuestionGenerationError) Error() string {
	return fmt.Sprintf("question generation failed: %v", e.Err)
}

func (e *QuestionGenerationError) Unwrap() error { return e.Err }

// IsTerminal reports whether err ends the interview flow.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrInvalidLink) ||
		errors.Is(err, ErrExpiredLink) ||
		errors.Is(err, ErrInactiveLink) ||
		errors.Is(err, ErrCompatibilityRejected)
}

// IsRecoverable reports whether the candidate may retry the same action after err.
func IsRecoverable(err error) bool {
	var resumeErr *ResumeAnalysisError
	var questionErr *QuestionGenerationError
	return errors.As(err, &resumeErr) || errors.As(err, &questionErr)
}
