package stores

import (
	"context"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLInvoiceStore persists invoices in SQL (squealx)
type SQLInvoiceStore struct {
	db *squealx.DB
}

func NewSQLInvoiceStore(db *squealx.DB) *SQLInvoiceStore {
	return &SQLInvoiceStore{db: db}
}

const invoiceColumns = `id, property_id, tenant_id, amount, status, due_date, created_at, updated_at`

func scanInvoice(r interface {
	Scan(dest ...any) error
}) (*propguard.Invoice, error) {
	var inv propguard.Invoice
	var dueRaw, createdRaw, updatedRaw interface{}
	if err := r.Scan(&inv.ID, &inv.PropertyID, &inv.TenantID, &inv.Amount, &inv.Status, &dueRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	inv.DueDate = scanTime(dueRaw)
	inv.CreatedAt = scanTime(createdRaw)
	inv.UpdatedAt = scanTime(updatedRaw)
	return &inv, nil
}

func (s *SQLInvoiceStore) ListInvoices(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Invoice, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + invoiceColumns + ` FROM invoices` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Invoice, 0)
	for r.Next() {
		inv, err := scanInvoice(r)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *SQLInvoiceStore) GetInvoice(ctx context.Context, id string) (*propguard.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanInvoice(r)
}

func (s *SQLInvoiceStore) CreateInvoice(ctx context.Context, inv *propguard.Invoice) (*propguard.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	q := `INSERT INTO invoices(id, property_id, tenant_id, amount, status, due_date, created_at, updated_at)
	      VALUES(:id, :property_id, :tenant_id, :amount, :status, :due_date, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":          inv.ID,
		"property_id": inv.PropertyID,
		"tenant_id":   inv.TenantID,
		"amount":      inv.Amount,
		"status":      inv.Status,
		"due_date":    inv.DueDate,
		"created_at":  inv.CreatedAt,
		"updated_at":  inv.UpdatedAt,
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, propguard.ErrDuplicate
		}
		return nil, err
	}
	return inv, nil
}

func (s *SQLInvoiceStore) UpdateInvoice(ctx context.Context, inv *propguard.Invoice) (*propguard.Invoice, error) {
	q := `UPDATE invoices SET amount=:amount, status=:status, due_date=:due_date, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":         inv.ID,
		"amount":     inv.Amount,
		"status":     inv.Status,
		"due_date":   inv.DueDate,
		"updated_at": inv.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, inv.ID)
}
