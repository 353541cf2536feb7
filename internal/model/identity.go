package model

// Role distinguishes account holders from anonymous guests
type Role string

const (
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// Profile is the account data returned by the auth server
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Identity is the local participant. Members carry Token and Profile,
// guests carry EphemeralID and Nickname.
type Identity struct {
	Role Role

	Token   string
	Profile Profile

	EphemeralID string
	Nickname    string
}

// Credentials is what a member logs in with
type Credentials struct {
	Email    string
	Password string
}

// IsGuest reports whether this is a guest identity
func (i *Identity) IsGuest() bool {
	return i.Role == RoleGuest
}

// PlayerID returns the id used for this participant inside a session
func (i *Identity) PlayerID() string {
	if i.IsGuest() {
		return i.EphemeralID
	}
	return i.Profile.ID
}

// DisplayName returns the nickname shown to other players
func (i *Identity) DisplayName() string {
	if i.IsGuest() {
		return i.Nickname
	}
	return i.Profile.Name
}

// AsPlayer builds the roster entry for this participant
func (i *Identity) AsPlayer() Player {
	return Player{ID: i.PlayerID(), Name: i.DisplayName()}
}
