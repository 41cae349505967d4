package domain

import (
	"fmt"
	"time"
)

// ErrorReport is one structured entry in a run's ordered error list. Every
// terminal error surface carries both the reports and a plain-language
// summary; neither replaces the other.
type ErrorReport struct {
	Time   time.Time  `json:"time"`
	Phase  Phase      `json:"phase"`
	Source SourceID   `json:"source,omitempty"`
	Step   string     `json:"step,omitempty"`
	Class  ErrorClass `json:"class"`
	Detail string     `json:"detail"`
}

// NewErrorReport captures an error at the point of final failure, after the
// retry budget for its step is spent.
func NewErrorReport(now time.Time, phase Phase, source SourceID, step string, err error) ErrorReport {
	return ErrorReport{
		Time:   now,
		Phase:  phase,
		Source: source,
		Step:   step,
		Class:  Classify(err),
		Detail: err.Error(),
	}
}

// String renders the single-line technical form used in error listings.
func (r ErrorReport) String() string {
	where := string(r.Phase)
	if r.Source != "" {
		where += "/" + string(r.Source)
	}
	if r.Step != "" {
		where += " " + r.Step
	}
	return fmt.Sprintf("[%s] %s: %s", r.Class, where, r.Detail)
}
