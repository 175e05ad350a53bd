package models

// ReviewVerdict is the reviewer's judgment of the whole curriculum.
type ReviewVerdict struct {
	// Passed is true when the reviewer answered PASS.
	Passed bool `json:"passed"`
	// Verdict is the verdict line as written by the reviewer.
	Verdict string `json:"verdict"`
	// Concerns lists the individual issues the reviewer raised.
	Concerns []string `json:"concerns,omitempty"`
	// Notes is the reviewer's full free-text commentary.
	Notes string `json:"notes"`
}

// Label returns "PASS" or "FAIL".
func (r ReviewVerdict) Label() string {
	if r.Passed {
		return "PASS"
	}
	return "FAIL"
}
