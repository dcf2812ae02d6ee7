package judge0

import "errors"

// Status identifiers used by the remote judge. Only the mapping to the local
// success flag is owned here; the enum itself belongs to the judge.
const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
)

// ErrUnavailable indicates the judge service could not be reached.
var ErrUnavailable = errors.New("judge service unavailable")

// ErrUpstream indicates the judge returned a non-success response.
var ErrUpstream = errors.New("judge service returned an error")

// SubmissionRequest is the payload dispatched to the judge. Source code is
// already base64 encoded by the caller.
type SubmissionRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin,omitempty"`
}

// Status is the judge's verdict descriptor for a submission.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Terminal reports whether the judge has finished processing the submission.
func (s Status) Terminal() bool {
	return s.ID > StatusProcessing
}

// Accepted reports whether the verdict maps to a successful submission.
func (s Status) Accepted() bool {
	return s.ID == StatusAccepted
}

// SubmissionResult carries the judge's output for one submission. The
// stdout/stderr/compile_output fields arrive base64 encoded and are decoded
// by the caller at the display boundary.
type SubmissionResult struct {
	Token         string  `json:"token"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Message       string  `json:"message"`
	Time          string  `json:"time"`
	Memory        float64 `json:"memory"`
	Status        Status  `json:"status"`
}

// Language describes one entry of the judge's language metadata endpoint.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
