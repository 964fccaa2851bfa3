package stores

import (
	"context"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLPropertyStore persists properties in SQL (squealx)
type SQLPropertyStore struct {
	db *squealx.DB
}

func NewSQLPropertyStore(db *squealx.DB) *SQLPropertyStore {
	return &SQLPropertyStore{db: db}
}

const propertyColumns = `id, owner_id, name, address, city, type, status, created_at, updated_at`

func scanProperty(r interface {
	Scan(dest ...any) error
}) (*propguard.Property, error) {
	var p propguard.Property
	var createdRaw, updatedRaw interface{}
	if err := r.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.City, &p.Type, &p.Status, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	p.CreatedAt = scanTime(createdRaw)
	p.UpdatedAt = scanTime(updatedRaw)
	return &p, nil
}

func (s *SQLPropertyStore) ListProperties(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Property, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + propertyColumns + ` FROM properties` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Property, 0)
	for r.Next() {
		p, err := scanProperty(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQLPropertyStore) CountProperties(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) (int, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return 0, err
	}
	q := `SELECT COUNT(1) FROM properties` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	if !r.Next() {
		return 0, nil
	}
	var n int
	if err := r.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLPropertyStore) GetProperty(ctx context.Context, id string) (*propguard.Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanProperty(r)
}

func (s *SQLPropertyStore) CreateProperty(ctx context.Context, p *propguard.Property) (*propguard.Property, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	q := `INSERT INTO properties(id, owner_id, name, address, city, type, status, created_at, updated_at)
	      VALUES(:id, :owner_id, :name, :address, :city, :type, :status, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":         p.ID,
		"owner_id":   p.OwnerID,
		"name":       p.Name,
		"address":    p.Address,
		"city":       p.City,
		"type":       p.Type,
		"status":     p.Status,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, propguard.ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

func (s *SQLPropertyStore) UpdateProperty(ctx context.Context, p *propguard.Property) (*propguard.Property, error) {
	q := `UPDATE properties SET owner_id=:owner_id, name=:name, address=:address, city=:city,
	      type=:type, status=:status, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":         p.ID,
		"owner_id":   p.OwnerID,
		"name":       p.Name,
		"address":    p.Address,
		"city":       p.City,
		"type":       p.Type,
		"status":     p.Status,
		"updated_at": p.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetProperty(ctx, p.ID)
}

func (s *SQLPropertyStore) DeleteProperty(ctx context.Context, id string) error {
	q := `DELETE FROM properties WHERE id = :id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{"id": id})
	return err
}

func (s *SQLPropertyStore) OwnedPropertyIDs(ctx context.Context, ownerID string) ([]string, error) {
	q := `SELECT id FROM properties WHERE owner_id = :owner_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]string, 0)
	for r.Next() {
		var id string
		if err := r.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
