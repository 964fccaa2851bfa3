package stores

import (
	"context"
	"time"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLContractStore persists lease contracts in SQL (squealx)
type SQLContractStore struct {
	db *squealx.DB
}

func NewSQLContractStore(db *squealx.DB) *SQLContractStore {
	return &SQLContractStore{db: db}
}

const contractColumns = `id, property_id, tenant_id, status, start_date, end_date, rent_amount, created_at, updated_at`

func scanContract(r interface {
	Scan(dest ...any) error
}) (*propguard.Contract, error) {
	var c propguard.Contract
	var startRaw, endRaw, createdRaw, updatedRaw interface{}
	if err := r.Scan(&c.ID, &c.PropertyID, &c.TenantID, &c.Status, &startRaw, &endRaw, &c.RentAmount, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	c.StartDate = scanTime(startRaw)
	c.EndDate = scanTime(endRaw)
	c.CreatedAt = scanTime(createdRaw)
	c.UpdatedAt = scanTime(updatedRaw)
	return &c, nil
}

func (s *SQLContractStore) ListContracts(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Contract, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + contractColumns + ` FROM contracts` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Contract, 0)
	for r.Next() {
		c, err := scanContract(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *SQLContractStore) GetContract(ctx context.Context, id string) (*propguard.Contract, error) {
	q := `SELECT ` + contractColumns + ` FROM contracts WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanContract(r)
}

func (s *SQLContractStore) CreateContract(ctx context.Context, c *propguard.Contract) (*propguard.Contract, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	q := `INSERT INTO contracts(id, property_id, tenant_id, status, start_date, end_date, rent_amount, created_at, updated_at)
	      VALUES(:id, :property_id, :tenant_id, :status, :start_date, :end_date, :rent_amount, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":          c.ID,
		"property_id": c.PropertyID,
		"tenant_id":   c.TenantID,
		"status":      c.Status,
		"start_date":  c.StartDate,
		"end_date":    c.EndDate,
		"rent_amount": c.RentAmount,
		"created_at":  c.CreatedAt,
		"updated_at":  c.UpdatedAt,
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, propguard.ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

func (s *SQLContractStore) UpdateContract(ctx context.Context, c *propguard.Contract) (*propguard.Contract, error) {
	q := `UPDATE contracts SET status=:status, start_date=:start_date, end_date=:end_date,
	      rent_amount=:rent_amount, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":          c.ID,
		"status":      c.Status,
		"start_date":  c.StartDate,
		"end_date":    c.EndDate,
		"rent_amount": c.RentAmount,
		"updated_at":  c.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetContract(ctx, c.ID)
}

func (s *SQLContractStore) ActiveRentedPropertyIDs(ctx context.Context, tenantID string, now time.Time) ([]string, error) {
	q := `SELECT property_id FROM contracts
	      WHERE tenant_id = :tenant_id AND status = :status
	        AND start_date <= :now AND end_date >= :now`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{
		"tenant_id": tenantID,
		"status":    propguard.ContractActive,
		"now":       now,
	})
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

func (s *SQLContractStore) ActiveTenantIDs(ctx context.Context, propertyIDs []string, now time.Time) ([]string, error) {
	if len(propertyIDs) == 0 {
		return []string{}, nil
	}
	args := map[string]any{"status": propguard.ContractActive, "now": now}
	in := FilterSQL(propguard.FieldIn("property_id", propertyIDs), args)
	q := `SELECT DISTINCT tenant_id FROM contracts
	      WHERE ` + in + ` AND status = :status AND start_date <= :now AND end_date >= :now`
	r, err := s.db.NamedQueryContext(ctx, q, args)
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
