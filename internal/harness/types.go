package harness

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors lists the expectations that did not hold.
	Errors []string `json:"errors,omitempty"`

	// Source is the generated file, empty when expansion failed.
	Source string `json:"-"`

	// Codes are the error codes the expansion reported.
	Codes []string `json:"codes,omitempty"`

	// Diagnostics is the expansion's error report, one error per line.
	Diagnostics string `json:"diagnostics,omitempty"`

	// Warnings are the expansion's non-fatal diagnostics.
	Warnings []string `json:"warnings,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Output is what golden files compare: the generated source, or the error
// report when expansion failed.
func (r *Result) Output() []byte {
	if r.Source != "" {
		return []byte(r.Source)
	}
	return []byte(r.Diagnostics + "\n")
}
