package prediction

import "errors"

var (
	ErrModelNotTrained = errors.New("no trained model: train the model first")
	ErrInFlight        = errors.New("a prediction is already in progress")
	ErrVerdictMismatch = errors.New("service returned a different number of verdicts than transactions sent")
)

// ValidationError is a local rejection of the batch. It never reaches the
// network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var (
	ErrEmptyBatch        = &ValidationError{Reason: "add at least one transaction first"}
	ErrNoCompleteRecords = &ValidationError{Reason: "no transaction has every field filled in"}
)
