package models

// StringSlice is a []string that serializes as JSON in MySQL.
type StringSlice []string

// WorkflowState is the moderation state shared by pending articles and
// request tickets. Values are kept in Spanish for wire compatibility with
// the original API.
type WorkflowState string

const (
	StatePending  WorkflowState = "pendiente"
	StateApproved WorkflowState = "aprobado"
	StateRejected WorkflowState = "denegado"
	StateCanceled WorkflowState = "cancelado"
)

// Terminal reports whether no further transition may leave this state.
func (s WorkflowState) Terminal() bool {
	switch s {
	case StateApproved, StateRejected, StateCanceled:
		return true
	}
	return false
}

// ChangeType distinguishes a brand-new article from an update to an
// existing one.
type ChangeType string

const (
	ChangeNew    ChangeType = "new"
	ChangeUpdate ChangeType = "update"
)

// Role is a user's capability level.
type Role string

const (
	RoleReader Role = "lector"
	RoleWriter Role = "escritor"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	return r == RoleReader || r == RoleWriter || r == RoleAdmin
}
