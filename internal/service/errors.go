package service

import "errors"

// Attempt engine error kinds. Handlers map these onto API error codes.
var (
	// ErrAssessmentNotFound is returned when the referenced assessment is absent.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrAssessmentNotPublished is returned when starting against an unpublished assessment.
	ErrAssessmentNotPublished = errors.New("assessment not published")
	// ErrAttemptNotFound is returned when the referenced attempt is absent.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptExpired is returned when submitting after the deadline. The
	// attempt is transitioned to EXPIRED as a side effect of this detection.
	ErrAttemptExpired = errors.New("attempt expired")
	// ErrAlreadySubmitted is returned on repeat submission of a terminal attempt.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrSubmissionConflict is returned when a concurrent submit won the
	// status-guarded update race.
	ErrSubmissionConflict = errors.New("concurrent submission conflict")
	// ErrInvalidAnswer is returned when an answer carries an unknown
	// question-type discriminator. The whole submission is rejected.
	ErrInvalidAnswer = errors.New("invalid answer type")
	// ErrEvaluatorUnavailable is returned when the code evaluator fails or
	// times out. The attempt stays IN_PROGRESS so the submit can be retried.
	ErrEvaluatorUnavailable = errors.New("code evaluator unavailable")
)
