package analysis

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

var (
	// ErrMissingFace marks a frame without usable face landmarks.
	ErrMissingFace = errors.New("face not detected")
	// ErrInvalidInput marks accumulator state the scorer refuses to score.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration marks a scoring configuration that failed validation.
	ErrInvalidConfiguration = errors.New("invalid scoring configuration")
	// ErrMalformedFrame marks a frame rejected at ingestion.
	ErrMalformedFrame = errors.New("malformed frame")
)

func invalidInput(format string, args ...interface{}) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf(format, args...)).
		WithCause(ErrInvalidInput)
}

func malformedFrame(issues errbuilder.ErrorMap) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("frame rejected").
		WithCause(ErrMalformedFrame).
		WithDetails(errbuilder.NewErrDetails(issues))
}

func invalidConfiguration(name string, issues errbuilder.ErrorMap) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("scoring profile %q failed validation", name)).
		WithCause(ErrInvalidConfiguration).
		WithDetails(errbuilder.NewErrDetails(issues))
}
