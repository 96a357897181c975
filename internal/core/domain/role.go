package domain

// Role is the closed set of authorization roles. Wire values follow the
// backend's numeric role identifiers; anything outside the known range maps
// to RoleUnknown.
//
// Authorization decisions compare Role values only. Display names are a
// presentation concern and must never feed a gating decision.
type Role int

const (
	RoleUnknown       Role = 0
	RoleAdministrator Role = 1
	RoleEmployer      Role = 2
	RoleApplicant     Role = 3
)

// RoleFromID converts a backend role identifier to a Role.
func RoleFromID(id int) Role {
	switch Role(id) {
	case RoleAdministrator, RoleEmployer, RoleApplicant:
		return Role(id)
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	case RoleEmployer:
		return "employer"
	case RoleApplicant:
		return "applicant"
	default:
		return "unknown"
	}
}
