package entities

// SelectionResult is produced fresh per selector invocation and never
// persisted. Empty interface names mean "no candidate".
type SelectionResult struct {
	InternetInterface string
	HotspotInterface  string
	Rationale         []string
	Warnings          []string
	HighRisk          bool
}

// PreflightReport is the outcome of the preflight checklist. OK is false
// iff Errors is non-empty; ordering matters only for display.
type PreflightReport struct {
	Errors   []string
	Warnings []string

	// TargetInterface is the effective hotspot interface the checks ran
	// against, manual or selector-derived.
	TargetInterface string
}

func (r PreflightReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *PreflightReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *PreflightReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
