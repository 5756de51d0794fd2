package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrModelNotTrained      = errors.New("model is not trained")
	ErrMissingReferenceID   = errors.New("property record has no reference id")
	ErrUnknownFeature       = errors.New("unknown feature")
	ErrUnsupportedModelKind = errors.New("unsupported model kind")
)

// InsufficientDataError is returned when a corpus is too small to train on
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: have %d rows, need at least %d", e.Have, e.Need)
}

// FeatureOrderMismatchError is returned when an inference vector was built with a
// different column layout than the one the model was trained with
type FeatureOrderMismatchError struct {
	Expected []string
	Got      []string
}

func (e *FeatureOrderMismatchError) Error() string {
	return fmt.Sprintf("feature order mismatch: model expects [%s], got [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

// InvalidFeatureValueError reports a feature value outside its allowed domain
type InvalidFeatureValueError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidFeatureValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Field, e.Reason)
}
