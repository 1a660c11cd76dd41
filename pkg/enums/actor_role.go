package enums

import "fmt"

// ActorRole is the back-office role carried in the bearer token. Status
// updates and deletions require one of the operational roles.
type ActorRole string

const (
	ActorRoleAdmin   ActorRole = "admin"
	ActorRoleManager ActorRole = "manager"
	ActorRoleOps     ActorRole = "ops"
	ActorRoleViewer  ActorRole = "viewer"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleManager,
	ActorRoleOps,
	ActorRoleViewer,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// CanMutate reports whether the role may record status updates, upload
// attachments, or delete them.
func (a ActorRole) CanMutate() bool {
	switch a {
	case ActorRoleAdmin, ActorRoleManager, ActorRoleOps:
		return true
	default:
		return false
	}
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
