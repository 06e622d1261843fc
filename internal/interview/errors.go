package interview

import (
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

var (
	// ErrNotFound is returned for an unknown or expired interview ID.
	ErrNotFound = errors.New("interview not found")
	// ErrNotListening is returned when an answer operation needs an open answer.
	ErrNotListening = errors.New("not listening")
	// ErrAlreadyListening is returned when an answer is started twice.
	ErrAlreadyListening = errors.New("already listening")
	// ErrFinished is returned for any answer operation after the last question.
	ErrFinished = errors.New("interview finished")
)

func notFound(id string) error {
	details := errbuilder.ErrorMap{}
	details.Set("interview_id", errors.New(id))
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("interview not found").
		WithCause(ErrNotFound).
		WithDetails(errbuilder.NewErrDetails(details))
}

func stateConflict(cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(cause.Error()).
		WithCause(cause)
}
