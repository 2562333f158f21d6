package model

// User is a registered account in the identity provider's user store
type User struct {
	Username string
	Password string
	Avatar   string
}

// Identity represents a signed-in user. UID is stable and unique,
// Avatar is a display reference only.
type Identity struct {
	UID    string
	Avatar string
}
