package domain

import (
	"github.com/gofrs/uuid/v5"
)

// Principal is the authenticated caller. The only implementations are
// AdminPrincipal and ClientPrincipal.
type Principal interface {
	principal()
}

type AdminPrincipal struct {
	ID uuid.UUID
}

type ClientPrincipal struct {
	ClientID uuid.UUID
}

func (AdminPrincipal) principal()  {}
func (ClientPrincipal) principal() {}

// MatchPrincipal dispatches on the principal variant. A nil or unknown principal
// is rejected with ErrForbidden.
func MatchPrincipal[T any](p Principal, onAdmin func(AdminPrincipal) (T, error), onClient func(ClientPrincipal) (T, error)) (T, error) {
	switch v := p.(type) {
	case AdminPrincipal:
		return onAdmin(v)
	case *AdminPrincipal:
		if v != nil {
			return onAdmin(*v)
		}
	case ClientPrincipal:
		return onClient(v)
	case *ClientPrincipal:
		if v != nil {
			return onClient(*v)
		}
	}
	var zero T
	return zero, ErrForbidden
}

// RequireAdmin succeeds only for admin principals.
func RequireAdmin(p Principal) error {
	_, err := MatchPrincipal(p,
		func(AdminPrincipal) (struct{}, error) { return struct{}{}, nil },
		func(ClientPrincipal) (struct{}, error) { return struct{}{}, ErrForbidden },
	)
	return err
}

// CanRead reports whether the principal may see an account owned by clientID.
func CanRead(p Principal, clientID uuid.UUID) bool {
	ok, _ := MatchPrincipal(p,
		func(AdminPrincipal) (bool, error) { return true, nil },
		func(c ClientPrincipal) (bool, error) { return c.ClientID == clientID, nil },
	)
	return ok
}
