package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SubmissionError reports the fields of a step-2 submission that could not
// be parsed, keyed by form field name.
type SubmissionError struct {
	Fields map[string]string
}

func (e *SubmissionError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// DecodeSubmission builds a FullSubmission from posted form values. Only
// columns of the authoritative field list are read; unknown keys are ignored
// and blank or missing values decode to NULL.
func DecodeSubmission(values url.Values) (FullSubmission, error) {
	rec := &PropertyRecord{}
	invalid := map[string]string{}

	for _, col := range submissionColumns {
		name, raw, ok := lookupValue(values, col)
		if !ok {
			continue
		}
		if err := col.Set(rec, raw); err != nil {
			invalid[name] = err.Error()
		}
	}

	if len(invalid) > 0 {
		return FullSubmission{}, &SubmissionError{Fields: invalid}
	}
	return FullSubmission{Subject: rec.Subject, Comps: rec.Comps}, nil
}

// lookupValue returns the submitted value for col, preferring the column
// name over its alias.
func lookupValue(values url.Values, col Column) (string, string, bool) {
	if v, ok := values[col.Name]; ok && len(v) > 0 {
		return col.Name, v[0], true
	}
	if col.Alias != "" {
		if v, ok := values[col.Alias]; ok && len(v) > 0 {
			return col.Alias, v[0], true
		}
	}
	return "", "", false
}
