package stores

import (
	"context"
	"time"

	"github.com/estateops/propguard"
	"github.com/oarkflow/squealx"
)

// SQLProfileStore persists profiles in SQL (squealx)
type SQLProfileStore struct {
	db *squealx.DB
}

func NewSQLProfileStore(db *squealx.DB) *SQLProfileStore {
	return &SQLProfileStore{db: db}
}

const profileColumns = `id, email, first_name, last_name, role, profile_type, created_at, updated_at`

func scanProfile(r interface {
	Scan(dest ...any) error
}) (*propguard.Profile, error) {
	var p propguard.Profile
	var role string
	var createdRaw, updatedRaw interface{}
	if err := r.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &role, &p.ProfileType, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	p.Role = propguard.Role(role)
	p.CreatedAt = scanTime(createdRaw)
	p.UpdatedAt = scanTime(updatedRaw)
	return &p, nil
}

func (s *SQLProfileStore) GetProfile(ctx context.Context, id string) (*propguard.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanProfile(r)
}

func (s *SQLProfileStore) EnsureProfile(ctx context.Context, p *propguard.Profile) (*propguard.Profile, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	q := `INSERT INTO profiles(id, email, first_name, last_name, role, profile_type, created_at, updated_at)
	      VALUES(:id, :email, :first_name, :last_name, :role, :profile_type, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":           p.ID,
		"email":        p.Email,
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"role":         string(p.Role),
		"profile_type": p.ProfileType,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	})
	if err != nil {
		// A concurrent provision may have inserted the row first; the row
		// that won the race is authoritative.
		if isDuplicateErr(err) {
			return s.GetProfile(ctx, p.ID)
		}
		return nil, err
	}
	return p, nil
}

func (s *SQLProfileStore) UpdateProfile(ctx context.Context, p *propguard.Profile) (*propguard.Profile, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	q := `UPDATE profiles SET email=:email, first_name=:first_name, last_name=:last_name,
	      role=:role, profile_type=:profile_type, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":           p.ID,
		"email":        p.Email,
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"role":         string(p.Role),
		"profile_type": p.ProfileType,
		"updated_at":   p.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, p.ID)
}

func (s *SQLProfileStore) ListProfiles(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Profile, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + profileColumns + ` FROM profiles` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Profile, 0)
	for r.Next() {
		p, err := scanProfile(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
