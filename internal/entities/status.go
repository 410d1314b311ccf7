package entities

// StatusUpdate is the outward notification consumed by the GUI
// collaborator through the status file. The file is overwritten, never
// appended, on each transition.
type StatusUpdate struct {
	Timestamp float64 `json:"timestamp"`
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	IsError   bool    `json:"is_error"` //nolint:tagliatelle // GUI file format
}

const (
	StatusActive = "active"
	StatusError  = "error"
)
