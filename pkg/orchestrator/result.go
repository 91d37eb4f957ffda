package orchestrator

import (
	"errors"

	"github.com/goliatone/go-validgen/pkg/model"
)

// Result is the outcome of one synthesis run.
type Result struct {
	// Type is the declared type the run synthesised.
	Type string
	// Validator is nil when assembly failed.
	Validator *model.GeneratedValidator
	// Source holds the rendered file when rendering succeeded.
	Source []byte
	// Path is where the writer persisted Source, if a writer is configured.
	Path        string
	Diagnostics model.Diagnostics
	// Err reports an artifact failure: assembly, render or write.
	Err error
}

// Failed reports whether the run produced no artifact or reported
// error-severity diagnostics.
func (r Result) Failed() bool {
	return r.Err != nil || r.Diagnostics.HasErrors()
}

// Results are returned in declaration order.
type Results []Result

// Diagnostics concatenates the diagnostics of every run.
func (rs Results) Diagnostics() model.Diagnostics {
	var out model.Diagnostics
	for _, r := range rs {
		out = append(out, r.Diagnostics...)
	}
	return out
}

// Err joins run failures and error diagnostics, or returns nil.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
		if err := r.Diagnostics.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Failed returns the runs that failed.
func (rs Results) Failed() Results {
	var out Results
	for _, r := range rs {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
