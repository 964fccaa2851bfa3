package stores

import (
	"context"
	"sync"
	"time"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
)

// In-memory stores mirror the SQL stores for tests and demos. They evaluate
// scope filters with the in-memory interpreter and share the SQL stores'
// sentinel error behavior.

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*propguard.Profile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]*propguard.Profile)}
}

func profileField(p *propguard.Profile) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return p.ID
		case "email":
			return p.Email
		case "role":
			return string(p.Role)
		case "profile_type":
			return p.ProfileType
		}
		return nil
	}
}

func (s *MemoryProfileStore) GetProfile(ctx context.Context, id string) (*propguard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *p
	return &dup, nil
}

func (s *MemoryProfileStore) EnsureProfile(ctx context.Context, p *propguard.Profile) (*propguard.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[p.ID]; ok {
		dup := *existing
		return &dup, nil
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	dup := *p
	s.profiles[p.ID] = &dup
	return p, nil
}

func (s *MemoryProfileStore) UpdateProfile(ctx context.Context, p *propguard.Profile) (*propguard.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *p
	s.profiles[p.ID] = &dup
	return p, nil
}

func (s *MemoryProfileStore) ListProfiles(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Profile, 0)
	for _, p := range s.profiles {
		get := profileField(p)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *p
			out = append(out, &dup)
		}
	}
	return out, nil
}

type MemoryPropertyStore struct {
	mu         sync.RWMutex
	properties map[string]*propguard.Property
}

func NewMemoryPropertyStore() *MemoryPropertyStore {
	return &MemoryPropertyStore{properties: make(map[string]*propguard.Property)}
}

func propertyField(p *propguard.Property) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return p.ID
		case "owner_id":
			return p.OwnerID
		case "name":
			return p.Name
		case "city":
			return p.City
		case "type":
			return p.Type
		case "status":
			return p.Status
		}
		return nil
	}
}

func (s *MemoryPropertyStore) ListProperties(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Property, 0)
	for _, p := range s.properties {
		get := propertyField(p)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *p
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (s *MemoryPropertyStore) CountProperties(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) (int, error) {
	rows, err := s.ListProperties(ctx, f, extra)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *MemoryPropertyStore) GetProperty(ctx context.Context, id string) (*propguard.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *p
	return &dup, nil
}

func (s *MemoryPropertyStore) CreateProperty(ctx context.Context, p *propguard.Property) (*propguard.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := s.properties[p.ID]; ok {
		return nil, propguard.ErrDuplicate
	}
	dup := *p
	s.properties[p.ID] = &dup
	return p, nil
}

func (s *MemoryPropertyStore) UpdateProperty(ctx context.Context, p *propguard.Property) (*propguard.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *p
	s.properties[p.ID] = &dup
	return p, nil
}

func (s *MemoryPropertyStore) DeleteProperty(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.properties, id)
	return nil
}

func (s *MemoryPropertyStore) OwnedPropertyIDs(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	for _, p := range s.properties {
		if p.OwnerID == ownerID {
			out = append(out, p.ID)
		}
	}
	return out, nil
}

type MemoryContractStore struct {
	mu        sync.RWMutex
	contracts map[string]*propguard.Contract
}

func NewMemoryContractStore() *MemoryContractStore {
	return &MemoryContractStore{contracts: make(map[string]*propguard.Contract)}
}

func contractField(c *propguard.Contract) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return c.ID
		case "property_id":
			return c.PropertyID
		case "tenant_id":
			return c.TenantID
		case "status":
			return c.Status
		}
		return nil
	}
}

func (s *MemoryContractStore) ListContracts(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Contract, 0)
	for _, c := range s.contracts {
		get := contractField(c)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *c
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (s *MemoryContractStore) GetContract(ctx context.Context, id string) (*propguard.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *c
	return &dup, nil
}

func (s *MemoryContractStore) CreateContract(ctx context.Context, c *propguard.Contract) (*propguard.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := s.contracts[c.ID]; ok {
		return nil, propguard.ErrDuplicate
	}
	dup := *c
	s.contracts[c.ID] = &dup
	return c, nil
}

func (s *MemoryContractStore) UpdateContract(ctx context.Context, c *propguard.Contract) (*propguard.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contracts[c.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *c
	s.contracts[c.ID] = &dup
	return c, nil
}

func (s *MemoryContractStore) ActiveRentedPropertyIDs(ctx context.Context, tenantID string, now time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	for _, c := range s.contracts {
		if c.TenantID == tenantID && c.IsActiveAt(now) {
			out = append(out, c.PropertyID)
		}
	}
	return out, nil
}

func (s *MemoryContractStore) ActiveTenantIDs(ctx context.Context, propertyIDs []string, now time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, c := range s.contracts {
		if !c.IsActiveAt(now) {
			continue
		}
		for _, pid := range propertyIDs {
			if c.PropertyID == pid {
				if _, ok := seen[c.TenantID]; !ok {
					seen[c.TenantID] = struct{}{}
					out = append(out, c.TenantID)
				}
				break
			}
		}
	}
	return out, nil
}

type MemoryMaintenanceStore struct {
	mu       sync.RWMutex
	requests map[string]*propguard.MaintenanceRequest
}

func NewMemoryMaintenanceStore() *MemoryMaintenanceStore {
	return &MemoryMaintenanceStore{requests: make(map[string]*propguard.MaintenanceRequest)}
}

func maintenanceField(m *propguard.MaintenanceRequest) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return m.ID
		case "property_id":
			return m.PropertyID
		case "tenant_id":
			return m.TenantID
		case "status":
			return m.Status
		case "priority":
			return m.Priority
		}
		return nil
	}
}

func (s *MemoryMaintenanceStore) ListRequests(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.MaintenanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.MaintenanceRequest, 0)
	for _, m := range s.requests {
		get := maintenanceField(m)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *m
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (s *MemoryMaintenanceStore) GetRequest(ctx context.Context, id string) (*propguard.MaintenanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.requests[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *m
	return &dup, nil
}

func (s *MemoryMaintenanceStore) CreateRequest(ctx context.Context, m *propguard.MaintenanceRequest) (*propguard.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, ok := s.requests[m.ID]; ok {
		return nil, propguard.ErrDuplicate
	}
	dup := *m
	s.requests[m.ID] = &dup
	return m, nil
}

func (s *MemoryMaintenanceStore) UpdateRequest(ctx context.Context, m *propguard.MaintenanceRequest) (*propguard.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[m.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *m
	s.requests[m.ID] = &dup
	return m, nil
}

type MemoryVoucherStore struct {
	mu       sync.RWMutex
	vouchers map[string]*propguard.Voucher
}

func NewMemoryVoucherStore() *MemoryVoucherStore {
	return &MemoryVoucherStore{vouchers: make(map[string]*propguard.Voucher)}
}

func voucherField(v *propguard.Voucher) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return v.ID
		case "property_id":
			return v.PropertyID
		case "tenant_id":
			return v.TenantID
		case "status":
			return string(v.Status)
		}
		return nil
	}
}

func (s *MemoryVoucherStore) ListVouchers(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Voucher, 0)
	for _, v := range s.vouchers {
		get := voucherField(v)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *v
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (s *MemoryVoucherStore) GetVoucher(ctx context.Context, id string) (*propguard.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *v
	return &dup, nil
}

func (s *MemoryVoucherStore) CreateVoucher(ctx context.Context, v *propguard.Voucher) (*propguard.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if _, ok := s.vouchers[v.ID]; ok {
		return nil, propguard.ErrDuplicate
	}
	dup := *v
	s.vouchers[v.ID] = &dup
	return v, nil
}

func (s *MemoryVoucherStore) UpdateVoucher(ctx context.Context, v *propguard.Voucher) (*propguard.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[v.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *v
	s.vouchers[v.ID] = &dup
	return v, nil
}

func (s *MemoryVoucherStore) DeleteVoucher(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[id]
	if !ok || v.Status != propguard.VoucherDraft {
		return propguard.ErrNotFound
	}
	delete(s.vouchers, id)
	return nil
}

type MemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*propguard.Invoice
}

func NewMemoryInvoiceStore() *MemoryInvoiceStore {
	return &MemoryInvoiceStore{invoices: make(map[string]*propguard.Invoice)}
}

func invoiceField(inv *propguard.Invoice) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return inv.ID
		case "property_id":
			return inv.PropertyID
		case "tenant_id":
			return inv.TenantID
		case "status":
			return inv.Status
		}
		return nil
	}
}

func (s *MemoryInvoiceStore) ListInvoices(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Invoice, 0)
	for _, inv := range s.invoices {
		get := invoiceField(inv)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *inv
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (s *MemoryInvoiceStore) GetInvoice(ctx context.Context, id string) (*propguard.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *inv
	return &dup, nil
}

func (s *MemoryInvoiceStore) CreateInvoice(ctx context.Context, inv *propguard.Invoice) (*propguard.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if _, ok := s.invoices[inv.ID]; ok {
		return nil, propguard.ErrDuplicate
	}
	dup := *inv
	s.invoices[inv.ID] = &dup
	return inv, nil
}

func (s *MemoryInvoiceStore) UpdateInvoice(ctx context.Context, inv *propguard.Invoice) (*propguard.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *inv
	s.invoices[inv.ID] = &dup
	return inv, nil
}

type MemoryBidStore struct {
	mu   sync.RWMutex
	bids map[string]*propguard.Bid
}

func NewMemoryBidStore() *MemoryBidStore {
	return &MemoryBidStore{bids: make(map[string]*propguard.Bid)}
}

func bidField(b *propguard.Bid) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return b.ID
		case "property_id":
			return b.PropertyID
		case "buyer_id":
			return b.BuyerID
		case "status":
			return b.Status
		}
		return nil
	}
}

func (s *MemoryBidStore) ListBids(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Bid, 0)
	for _, b := range s.bids {
		get := bidField(b)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *b
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (s *MemoryBidStore) GetBid(ctx context.Context, id string) (*propguard.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bids[id]
	if !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *b
	return &dup, nil
}

func (s *MemoryBidStore) CreateBid(ctx context.Context, b *propguard.Bid) (*propguard.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, ok := s.bids[b.ID]; ok {
		return nil, propguard.ErrDuplicate
	}
	dup := *b
	s.bids[b.ID] = &dup
	return b, nil
}

func (s *MemoryBidStore) UpdateBid(ctx context.Context, b *propguard.Bid) (*propguard.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bids[b.ID]; !ok {
		return nil, propguard.ErrNotFound
	}
	dup := *b
	s.bids[b.ID] = &dup
	return b, nil
}

type MemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications []*propguard.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{notifications: make([]*propguard.Notification, 0)}
}

func notificationField(n *propguard.Notification) func(string) any {
	return func(field string) any {
		switch field {
		case "id":
			return n.ID
		case "recipient_id":
			return n.RecipientID
		case "sender_id":
			return n.SenderID
		case "type":
			return n.Type
		}
		return nil
	}
}

func (s *MemoryNotificationStore) CreateNotification(ctx context.Context, n *propguard.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	dup := *n
	s.notifications = append(s.notifications, &dup)
	return nil
}

func (s *MemoryNotificationStore) ListNotifications(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*propguard.Notification, 0)
	for _, n := range s.notifications {
		get := notificationField(n)
		if f.Matches(get) && matchesExtra(extra, get) {
			dup := *n
			out = append(out, &dup)
		}
	}
	return out, nil
}
