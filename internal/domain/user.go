package domain

import "time"

// Viewer is the actor a page is rendered for. A nil *Viewer is an anonymous guest.
type Viewer struct {
	ID   string
	Role Role
}

// Authenticated reports whether v is a usable identity: non-nil, with an ID
// and a recognised role. Anything else is treated as a guest.
func (v *Viewer) Authenticated() bool {
	return v != nil && v.ID != "" && v.Role.Valid()
}

// Is reports whether v is the user referenced by ref. Absent values never match.
func (v *Viewer) Is(ref *UserRef) bool {
	return v.Authenticated() && ref != nil && ref.ID != "" && ref.ID == v.ID
}

// UserRef is an embedded reference to a user on a content record.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Contacts groups optional public contact details of a profile.
type Contacts struct {
	Website string   `json:"website,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Socials []string `json:"socials"`
}

// User is a forum account as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	Category  string    `json:"category,omitempty"`
	Contacts  Contacts  `json:"contacts"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpertProfile reports whether the user belongs in the expert directory.
func (u User) IsExpertProfile() bool {
	return u.Role.IsExpertTier() || u.Role.IsAdmin()
}
