/*
users.go - Admin and consultant credential handling

PURPOSE:
  Authentication lookups and consultant account creation. The importer's
  period attachment is performed on behalf of an authenticated consultant;
  administrators gate period creation and export.

SECURITY MODEL:
  Passwords are bcrypt-hashed at rest. A failed lookup or mismatch returns
  ErrNotAuthenticated; callers re-prompt. There is no lockout or rate
  limiting.

SEE ALSO:
  - store.go: Credential persistence
*/
package collections

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Directory authenticates admins and consultants and registers new
// consultant accounts.
type Directory struct {
	store Store
}

// NewDirectory creates a directory backed by the given store.
func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// AuthenticateAdmin verifies an administrator credential.
func (d *Directory) AuthenticateAdmin(ctx context.Context, username, password string) error {
	admin, err := d.store.AdminByUsername(ctx, username)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotAuthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return ErrNotAuthenticated
	}
	return nil
}

// AuthenticateConsultant verifies a consultant credential and returns the
// consultant record on success.
func (d *Directory) AuthenticateConsultant(ctx context.Context, name, password string) (*Consultant, error) {
	c, err := d.store.ConsultantByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotAuthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotAuthenticated
	}
	return c, nil
}

// AddConsultant registers a consultant account and returns its identifier.
// The admin passcode is stored verbatim; only the password is hashed.
func (d *Directory) AddConsultant(ctx context.Context, name, area, adminPasscode, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return d.store.AddConsultant(ctx, Consultant{
		Name:          name,
		AdminPasscode: adminPasscode,
		PasswordHash:  string(hash),
		Area:          area,
	})
}

// ListConsultants returns all consultant records.
func (d *Directory) ListConsultants(ctx context.Context) ([]Consultant, error) {
	return d.store.ListConsultants(ctx)
}
