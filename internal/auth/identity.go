package auth

// Identity is the caller attached to a request after session verification.
type Identity struct {
	UserID         string
	OrganizationID string
	// Role is one of admin, employee, partner, subcontractor.
	Role string
}

func (i *Identity) IsInternal() bool {
	return i != nil && (i.Role == "admin" || i.Role == "employee")
}
