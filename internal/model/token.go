package model

// TokenManager mints and validates access tokens. Claims are captured
// at issuance time: a later role change does not alter tokens already
// in flight.
type TokenManager interface {
	Generate(user User) (string, error)
	Parse(token string) (Principal, error)
}

// Principal is the identity asserted by a validated token.
type Principal struct {
	UserID      string
	Username    string
	Authorities []string
}

// HasAuthority reports whether the principal carries the given
// capability string.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
