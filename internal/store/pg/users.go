package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"jobdesk.org/internal/identity"
	"jobdesk.org/internal/ids"
)

// Users implements identity.UserStore. Email uniqueness is enforced by a
// case-insensitive unique index so concurrent registrations cannot race the
// existence check.
type Users struct {
	*Store
}

var _ identity.UserStore = (*Users)(nil)

func (s *Store) Users() *Users { return &Users{Store: s} }

func (u *Users) Create(ctx context.Context, user *identity.User) error {
	if user.ID == "" {
		user.ID = ids.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return err
	}
	_, err = u.db.ExecContext(ctx, `
		insert into users(id, first_name, last_name, email, password_hash, role, preferences, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$8)
	`, user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, prefs, now)
	if isUniqueViolation(err) {
		return identity.ErrEmailTaken
	}
	return err
}

func (u *Users) FindByID(ctx context.Context, id string) (*identity.User, error) {
	return u.findOne(ctx, `where id=$1`, id)
}

func (u *Users) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return u.findOne(ctx, `where lower(email)=lower($1)`, email)
}

func (u *Users) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := u.db.ExecContext(ctx, `
		update users set password_hash=$2, updated_at=now() where id=$1
	`, userID, passwordHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func (u *Users) findOne(ctx context.Context, where string, arg any) (*identity.User, error) {
	var user identity.User
	var prefs []byte
	err := u.db.QueryRowContext(ctx, `
		select id, first_name, last_name, email, password_hash, role, preferences, created_at, updated_at
		from users `+where,
		arg,
	).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.Role, &prefs, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Preferences); err != nil {
			return nil, err
		}
	}
	return &user, nil
}
