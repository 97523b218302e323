package auth

import "strings"

// TokenHeader carries the session token on every authenticated request.
const TokenHeader = "X-Flexfit-Token"

// Identity is what a signed-in client holds: the owner every record is
// stamped with and the session token that proves it.
type Identity struct {
	OwnerID  string `json:"ownerId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (i Identity) SignedIn() bool {
	return strings.TrimSpace(i.OwnerID) != "" && i.Token != ""
}
