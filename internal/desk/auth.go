package desk

import (
	"context"
	"strings"

	"github.com/roach88/clinicdesk/internal/domain"
)

// Login authenticates against the fixed credentials. A mismatch is a
// ValidationError and leaves the session as it was.
func (d *Desk) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	ok, err := d.session.Login(ctx, username, password)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, &ValidationError{Code: CodeLoginFailed, Message: MsgLoginFailed}
	}
	return *d.session.Current(), nil
}

// Signup sets the current identity to username with the chosen role.
func (d *Desk) Signup(ctx context.Context, username, password, role string) (domain.Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" || role == "" {
		return domain.Identity{}, required(MsgAllFieldsRequired)
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.Identity{}, invalid("Unknown role %q.", role)
	}
	ok, err := d.session.Signup(ctx, username, password, r)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, &ValidationError{Code: CodeSignupFailed, Message: MsgSignupFailed}
	}
	return *d.session.Current(), nil
}

// Logout clears the session. Logging out twice is not an error.
func (d *Desk) Logout(ctx context.Context) error {
	return d.session.Logout(ctx)
}
