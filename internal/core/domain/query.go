package domain

import "time"

// RunRequest is the serving-layer request: one document, many questions.
// @Description Document query request
type RunRequest struct {
	Documents string   `json:"documents" example:"https://example.com/policy.pdf"`
	Questions []string `json:"questions"`
}

// RunResponse carries one answer per question, in question order.
// @Description Document query response
type RunResponse struct {
	Answers []string `json:"answers"`
}

// RunResult is the pipeline's internal view of a completed run.
type RunResult struct {
	DocumentHash string
	Answers      []string
	Took         time.Duration
}

// Validate checks the request for obvious problems before any network work.
func (r *RunRequest) Validate() error {
	if r.Documents == "" {
		return ErrInvalidInput
	}
	if len(r.Questions) == 0 {
		return ErrInvalidInput
	}
	return nil
}
