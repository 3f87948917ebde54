// Package projects is the minimal project directory the workflow engine
// depends on: existence checks and creation for seeding.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
)

var ErrNotFound = errors.New("project not found")

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create inserts a project, retrying with a suffixed key while the key is taken.
func (r *Repo) Create(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	base := BaseKey(name)
	for i := 0; i < 5; i++ {
		key := base
		if i > 0 {
			suffixed, err := SuffixedKey(base)
			if err != nil {
				return nil, err
			}
			key = suffixed
		}

		const q = `
insert into projects (name, key)
values ($1, $2)
returning id, name, key, created_at, updated_at;
`
		var p Project
		err := r.db.QueryRowContext(ctx, q, name, key).
			Scan(&p.ID, &p.Name, &p.Key, &p.CreatedAt, &p.UpdatedAt)
		if err == nil {
			return &p, nil
		}

		// unique violation on key → retry
		if postgres.IsUniqueViolation(err) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project key")
}

func (r *Repo) Get(ctx context.Context, id int64) (*Project, error) {
	const q = `
select id, name, key, created_at, updated_at
from projects
where id = $1;
`
	var p Project
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Key, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `select exists(select 1 from projects where id = $1);`, id).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}
