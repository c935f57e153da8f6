// Package policy is the single place deciding who may mutate a record.
package policy

// Role of an account.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleDeveloper || r == RoleAdmin
}

// Actor is the authenticated account doing the operation.
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanMutate allows the record owner or any admin.
func CanMutate(ownerID int64, actor Actor) bool {
	if actor.ID == 0 {
		return false
	}

	return ownerID == actor.ID || actor.IsAdmin()
}

// CanChangeStatus allows changing moderation fields of an application (status and featured flag).
func CanChangeStatus(actor Actor) bool {
	return actor.IsAdmin()
}
