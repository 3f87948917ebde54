package users

import (
	"context"
	"database/sql"
	"fmt"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
}

// EnsureUser maps a firebase uid to a users.id, creating the row on first sight.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (int64, error) {
	if u.FirebaseUID == "" {
		return 0, fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, updated_at)
values ($1, nullif($2,''), nullif($3,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  updated_at = now()
returning id;
`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, u.FirebaseUID, u.Email, u.DisplayName).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `select exists(select 1 from users where id = $1);`, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
