package stores

import (
	"context"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLMaintenanceStore persists maintenance requests in SQL (squealx)
type SQLMaintenanceStore struct {
	db *squealx.DB
}

func NewSQLMaintenanceStore(db *squealx.DB) *SQLMaintenanceStore {
	return &SQLMaintenanceStore{db: db}
}

const maintenanceColumns = `id, property_id, tenant_id, title, description, status, priority, created_at, updated_at`

func scanMaintenance(r interface {
	Scan(dest ...any) error
}) (*propguard.MaintenanceRequest, error) {
	var m propguard.MaintenanceRequest
	var createdRaw, updatedRaw interface{}
	if err := r.Scan(&m.ID, &m.PropertyID, &m.TenantID, &m.Title, &m.Description, &m.Status, &m.Priority, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	m.CreatedAt = scanTime(createdRaw)
	m.UpdatedAt = scanTime(updatedRaw)
	return &m, nil
}

func (s *SQLMaintenanceStore) ListRequests(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.MaintenanceRequest, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.MaintenanceRequest, 0)
	for r.Next() {
		m, err := scanMaintenance(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *SQLMaintenanceStore) GetRequest(ctx context.Context, id string) (*propguard.MaintenanceRequest, error) {
	q := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanMaintenance(r)
}

func (s *SQLMaintenanceStore) CreateRequest(ctx context.Context, m *propguard.MaintenanceRequest) (*propguard.MaintenanceRequest, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	q := `INSERT INTO maintenance_requests(id, property_id, tenant_id, title, description, status, priority, created_at, updated_at)
	      VALUES(:id, :property_id, :tenant_id, :title, :description, :status, :priority, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":          m.ID,
		"property_id": m.PropertyID,
		"tenant_id":   m.TenantID,
		"title":       m.Title,
		"description": m.Description,
		"status":      m.Status,
		"priority":    m.Priority,
		"created_at":  m.CreatedAt,
		"updated_at":  m.UpdatedAt,
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, propguard.ErrDuplicate
		}
		return nil, err
	}
	return m, nil
}

func (s *SQLMaintenanceStore) UpdateRequest(ctx context.Context, m *propguard.MaintenanceRequest) (*propguard.MaintenanceRequest, error) {
	q := `UPDATE maintenance_requests SET title=:title, description=:description, status=:status,
	      priority=:priority, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":          m.ID,
		"title":       m.Title,
		"description": m.Description,
		"status":      m.Status,
		"priority":    m.Priority,
		"updated_at":  m.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, m.ID)
}
