package domain

import "time"

// Profile selects the prompt and defaults of an application instance.
type Profile string

// Application profiles.
const (
	// ProfileMedical answers clinical questions over transcription records.
	ProfileMedical Profile = "medical"

	// ProfilePolicy answers questions over company policy documents.
	ProfilePolicy Profile = "policy"
)

// IsValid returns true if the profile is recognised.
func (p Profile) IsValid() bool {
	return p == ProfileMedical || p == ProfilePolicy
}

// String returns the string representation.
func (p Profile) String() string {
	return string(p)
}

// Answer is a generated response grounded in retrieved context.
type Answer struct {
	Question string        `json:"question"`
	Text     string        `json:"answer"`
	Sources  []QueryResult `json:"sources,omitempty"`

	// Failed is set when generation failed and Text holds the labelled failure.
	Failed bool `json:"failed,omitempty"`
}

// EvalResult records one query of an evaluation run.
type EvalResult struct {
	Query    string        `json:"query"`
	Response string        `json:"response"`
	Duration time.Duration `json:"time_taken"`
}
