package authz

const (
	RoleSales      = 10
	RoleOperations = 20
	RoleAudit      = 30
	RoleManagement = 40
	RoleAdmin      = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleOperations || roleID == RoleManagement || roleID == RoleAdmin
}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

// ScopeFor returns the owner restriction applied to lead visibility for the
// given role: nil means full visibility, otherwise leads are limited to the
// returned owner key. Sales staff only see their own book.
func ScopeFor(roleID int, userID int64) *int64 {
	if IsElevated(roleID) || roleID == RoleAudit {
		return nil
	}
	scope := userID
	return &scope
}
