package stores

import (
	"context"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLBidStore persists purchase bids in SQL (squealx)
type SQLBidStore struct {
	db *squealx.DB
}

func NewSQLBidStore(db *squealx.DB) *SQLBidStore {
	return &SQLBidStore{db: db}
}

const bidColumns = `id, property_id, buyer_id, amount, status, created_at, updated_at`

func scanBid(r interface {
	Scan(dest ...any) error
}) (*propguard.Bid, error) {
	var b propguard.Bid
	var createdRaw, updatedRaw interface{}
	if err := r.Scan(&b.ID, &b.PropertyID, &b.BuyerID, &b.Amount, &b.Status, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	b.CreatedAt = scanTime(createdRaw)
	b.UpdatedAt = scanTime(updatedRaw)
	return &b, nil
}

func (s *SQLBidStore) ListBids(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Bid, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + bidColumns + ` FROM bids` + where
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Bid, 0)
	for r.Next() {
		b, err := scanBid(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *SQLBidStore) GetBid(ctx context.Context, id string) (*propguard.Bid, error) {
	q := `SELECT ` + bidColumns + ` FROM bids WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, propguard.ErrNotFound
	}
	return scanBid(r)
}

func (s *SQLBidStore) CreateBid(ctx context.Context, b *propguard.Bid) (*propguard.Bid, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	q := `INSERT INTO bids(id, property_id, buyer_id, amount, status, created_at, updated_at)
	      VALUES(:id, :property_id, :buyer_id, :amount, :status, :created_at, :updated_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":          b.ID,
		"property_id": b.PropertyID,
		"buyer_id":    b.BuyerID,
		"amount":      b.Amount,
		"status":      b.Status,
		"created_at":  b.CreatedAt,
		"updated_at":  b.UpdatedAt,
	})
	if err != nil {
		if isDuplicateErr(err) {
			return nil, propguard.ErrDuplicate
		}
		return nil, err
	}
	return b, nil
}

func (s *SQLBidStore) UpdateBid(ctx context.Context, b *propguard.Bid) (*propguard.Bid, error) {
	q := `UPDATE bids SET amount=:amount, status=:status, updated_at=:updated_at WHERE id=:id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":         b.ID,
		"amount":     b.Amount,
		"status":     b.Status,
		"updated_at": b.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.GetBid(ctx, b.ID)
}
