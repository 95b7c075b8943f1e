package domain

import (
	"errors"
	"fmt"
)

// Error kinds persisted in run records.
const (
	ErrorKindGeneration = "generation"
	ErrorKindSynthesis  = "patch_synthesis"
	ErrorKindResource   = "resource"
)

// GenerationError reports that the completion endpoint failed for an
// unrecognized reason or produced no usable text. Compatibility rejections
// are absorbed inside the gateway and never surface as GenerationError.
type GenerationError struct {
	Msg string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation: %s: %v", e.Msg, e.Err)
	}
	return "generation: " + e.Msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SynthesisStage identifies which stage of patch synthesis failed.
type SynthesisStage string

const (
	StageExtract   SynthesisStage = "extract"
	StageIntegrity SynthesisStage = "integrity"
	StageDiff      SynthesisStage = "diff"
	StageValidate  SynthesisStage = "validate"
)

// SynthesisError reports that model output could not be turned into a valid
// unified diff. Stage distinguishes "model returned nothing usable" from
// "model returned a different file than expected" from "diff tool failed".
type SynthesisError struct {
	Stage SynthesisStage
	Msg   string
	Err   error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("patch synthesis (%s): %s: %v", e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("patch synthesis (%s): %s", e.Stage, e.Msg)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// ErrorKindOf maps an error to the kind stored in a failure run record.
// Anything that is neither a generation nor a synthesis failure is a resource
// problem (missing files, unwritable directories, and the like).
func ErrorKindOf(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return ErrorKindGeneration
	}
	var synErr *SynthesisError
	if errors.As(err, &synErr) {
		return ErrorKindSynthesis
	}
	return ErrorKindResource
}
