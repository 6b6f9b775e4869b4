package domain

import "strings"

// Role enumerates forum account roles.
type Role string

const (
	RoleUnknown   Role = ""
	RoleUser      Role = "user"
	RoleExpert    Role = "expert"
	RoleLawyer    Role = "lawyer"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Privilege tiers. Expert and lawyer share a tier.
const (
	TierNone = iota
	TierUser
	TierExpert
	TierModerator
	TierAdmin
)

// ParseRole maps a raw role string onto the closed set, returning RoleUnknown
// for anything unrecognised.
func ParseRole(raw string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleUser, RoleExpert, RoleLawyer, RoleModerator, RoleAdmin:
		return r
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Tier() != TierNone
}

// Tier returns the privilege tier of the role.
func (r Role) Tier() int {
	switch r {
	case RoleUser:
		return TierUser
	case RoleExpert, RoleLawyer:
		return TierExpert
	case RoleModerator:
		return TierModerator
	case RoleAdmin:
		return TierAdmin
	default:
		return TierNone
	}
}

// AtLeast reports whether r is at or above the tier of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Tier() >= min.Tier()
}

// IsAdmin reports whether r is the administrator role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsExpertTier reports whether r is expert or lawyer.
func (r Role) IsExpertTier() bool {
	return r.Tier() == TierExpert
}

// CanAuthorAnswers reports whether r may post answers. Lawyers are not included.
func (r Role) CanAuthorAnswers() bool {
	return r == RoleExpert || r == RoleAdmin
}

// IsStaffAuthor reports whether content written by r counts as a staff answer
// for visibility bonuses (expert or admin).
func (r Role) IsStaffAuthor() bool {
	return r == RoleExpert || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
