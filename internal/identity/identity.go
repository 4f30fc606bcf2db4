package identity

import "context"

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// Identity is the authenticated principal handed to every core operation.
// The id is issued by the external identity provider and is stable for the
// lifetime of the account. Operations receive it explicitly as an argument;
// nothing in the core reads ambient session state.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  string
}

func (i Identity) IsZero() bool {
	return i.ID == ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type contextKey string

const identityKey contextKey = "identity"

// WithContext binds the identity into the request context
func WithContext(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext returns the identity bound by the auth middleware, if any
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}
