package models

// ActorType is the resolved identity kind of an authenticated caller.
type ActorType string

const (
	ActorSuperAdmin ActorType = "super_admin"
	ActorAdmin      ActorType = "admin"
	ActorTeam       ActorType = "team"
	ActorMember     ActorType = "member"
)

// Actor carries the identity resolved from a bearer credential. Exactly one
// of the id fields is meaningful for a given type: UserID for admins,
// TeamID for teams, MemberID (plus its TeamID) for members.
type Actor struct {
	Type     ActorType
	UserID   int
	TeamID   int
	MemberID int
}

// IsAdmin reports whether the actor is a platform admin of either role.
func (a Actor) IsAdmin() bool {
	return a.Type == ActorSuperAdmin || a.Type == ActorAdmin
}
