package domain

import "github.com/google/uuid"

// Actor roles. Authentication itself happens upstream; the engine only
// receives an already-authenticated identity and its role.
const (
	RoleCustomer  = "customer"
	RolePersonnel = "bank_personnel"
	RoleProvider  = "provider"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

func (a Actor) IsPersonnel() bool { return a.Role == RolePersonnel }
func (a Actor) IsCustomer() bool  { return a.Role == RoleCustomer }
func (a Actor) IsProvider() bool  { return a.Role == RoleProvider }
