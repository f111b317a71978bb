package entities

import "time"

// Contact is a known person parsed from the network-contacts tree
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
	Category string `json:"category"`
	FilePath string `json:"file_path"`
}

// Project is an active project parsed from the project-management tree
type Project struct {
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	Summary  string `json:"summary,omitempty"`
}

// Partner is one of the fixed equity partners; the roster is hard-coded
type Partner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ContextSnapshot is the cached reference data handed to the AI processor
type ContextSnapshot struct {
	Contacts  []Contact `json:"contacts"`
	Projects  []Project `json:"projects"`
	Coaches   []Contact `json:"coaches"`
	Partners  []Partner `json:"partners"`
	Timestamp time.Time `json:"timestamp"`
}

// Age returns how long ago the snapshot was built
func (s *ContextSnapshot) Age() time.Duration {
	return time.Since(s.Timestamp)
}
