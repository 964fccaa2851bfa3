package stores

import (
	"context"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLVoucherStore persists vouchers in SQL (squealx)
type SQLVoucherStore struct {
	db *squealx.DB
}

func NewSQLVoucherStore(db *squealx.DB) *SQLVoucherStore {
	return &SQLVoucherStore{db: db}
}

const voucherColumns = `id, property_id, tenant_id, number, amount, status, posted_at, cancelled_at, cancel_notes, created_at, updated_at`

func scanVoucher(r interface {
	Scan(dest ...any) error
}) (*propguard.Voucher, error) {
	var v propguard.Voucher
	var status string
	var postedRaw, cancelledRaw, createdRaw, updatedRaw interface{}
	if err := r.Scan(&v.ID, &v.PropertyID, &v.TenantID, &v.Number, &v.Amount, &status, &postedRaw, &cancelledRaw, &v.CancelNotes, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	v.Status = propguard.VoucherStatus(status)
	v.PostedAt = scanTimePtr(postedRaw)
	v.CancelledAt = scanTimePtr(cancelledRaw)
	v.CreatedAt = scanTime(createdRaw)
	v.UpdatedAt = scanTime(updatedRaw)
	return &v, nil
}

func (s *SQLVoucherStore) ListVouchers(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Voucher, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + voucherColumns + ` FROM vouchers` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Voucher, 0)
	for r.Next() {
		v, err := scanVoucher(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *SQLVoucherStore) GetVoucher(ctx context.Context, id string) (*propguard.Voucher, error) {
	q := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanVoucher(r)
}

func (s *SQLVoucherStore) CreateVoucher(ctx context.Context, v *propguard.Voucher) (*propguard.Voucher, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	q := `INSERT INTO vouchers(id, property_id, tenant_id, number, amount, status, posted_at, cancelled_at, cancel_notes, created_at, updated_at)
	      VALUES(:id, :property_id, :tenant_id, :number, :amount, :status, :posted_at, :cancelled_at, :cancel_notes, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":           v.ID,
		"property_id":  v.PropertyID,
		"tenant_id":    v.TenantID,
		"number":       v.Number,
		"amount":       v.Amount,
		"status":       string(v.Status),
		"posted_at":    timeOrNil(v.PostedAt),
		"cancelled_at": timeOrNil(v.CancelledAt),
		"cancel_notes": v.CancelNotes,
		"created_at":   v.CreatedAt,
		"updated_at":   v.UpdatedAt,
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, propguard.ErrDuplicate
		}
		return nil, err
	}
	return v, nil
}

func (s *SQLVoucherStore) UpdateVoucher(ctx context.Context, v *propguard.Voucher) (*propguard.Voucher, error) {
	q := `UPDATE vouchers SET number=:number, amount=:amount, status=:status, posted_at=:posted_at,
	      cancelled_at=:cancelled_at, cancel_notes=:cancel_notes, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":           v.ID,
		"number":       v.Number,
		"amount":       v.Amount,
		"status":       string(v.Status),
		"posted_at":    timeOrNil(v.PostedAt),
		"cancelled_at": timeOrNil(v.CancelledAt),
		"cancel_notes": v.CancelNotes,
		"updated_at":   v.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetVoucher(ctx, v.ID)
}

func (s *SQLVoucherStore) DeleteVoucher(ctx context.Context, id string) error {
	// Status is re-checked here so a direct store caller cannot bypass the
	// draft-only rule enforced by the guard.
	q := `DELETE FROM vouchers WHERE id = :id AND status = :status`
	res, err := s.db.NamedExecContext(ctx, q, map[string]any{"id": id, "status": string(propguard.VoucherDraft)})
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return propguard.ErrNotFound
	}
	return nil
}
