package service

import (
	"context"
	"sync"

	"github.com/beifitycom/backend/internal/gateway"
	"github.com/beifitycom/backend/internal/models"
)

// The fakes below mirror the storage semantics the services rely on: the
// ledger fake recomputes the split on every create/save the way the real
// repository does, and reads hand out deep copies so a service mutation is
// only visible after an explicit save.

type fakeStore struct{}

func (fakeStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*models.Order)}
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = make([]models.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (f *fakeOrders) put(o *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = copyOrder(o)
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	f.put(order)
	return order, nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return copyOrder(o), nil
}

func (f *fakeOrders) GetOrdersByBuyerID(_ context.Context, buyerID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return models.ErrDataNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) LinkTransaction(_ context.Context, orderID, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return models.ErrDataNotFound
	}
	o.TransactionID = transactionID
	return nil
}

func (f *fakeOrders) UnlinkTransaction(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return models.ErrDataNotFound
	}
	o.TransactionID = ""
	return nil
}

func (f *fakeOrders) UpdateItem(_ context.Context, item *models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[item.OrderID]
	if !ok {
		return models.ErrDataNotFound
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i] = *item
			return nil
		}
	}
	return models.ErrDataNotFound
}

type fakeTxs struct {
	mu             sync.Mutex
	txs            map[string]*models.Transaction
	fee            models.FeeFunc
	commissionRate float64
}

func newFakeTxs(fee models.FeeFunc, commissionRate float64) *fakeTxs {
	return &fakeTxs{txs: make(map[string]*models.Transaction), fee: fee, commissionRate: commissionRate}
}

func copyTx(t *models.Transaction) *models.Transaction {
	cp := *t
	cp.Items = make([]models.TransactionItem, len(t.Items))
	copy(cp.Items, t.Items)
	return &cp
}

func (f *fakeTxs) CreateTransaction(_ context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if err := tx.ValidateAmounts(); err != nil {
		return nil, err
	}
	if err := tx.Recompute(f.fee, f.commissionRate); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs[tx.ID] = copyTx(tx)
	return tx, nil
}

func (f *fakeTxs) GetByReference(_ context.Context, ref string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txs {
		if t.ID == ref || t.GatewayRef == ref {
			return copyTx(t), nil
		}
	}
	return nil, models.ErrDataNotFound
}

func (f *fakeTxs) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	if err := tx.Recompute(f.fee, f.commissionRate); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[tx.ID]; !ok {
		return models.ErrDataNotFound
	}
	f.txs[tx.ID] = copyTx(tx)
	return nil
}

func (f *fakeTxs) DeleteIfPending(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txs[id]
	if !ok || t.Status != models.TxStatusPending {
		return models.ErrDataNotFound
	}
	delete(f.txs, id)
	return nil
}

type fakeWallets struct {
	mu       sync.Mutex
	balances map[string]float64
	history  []models.PayoutEntry
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{balances: make(map[string]float64)}
}

func (f *fakeWallets) GetWallet(_ context.Context, userID string) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.Wallet{UserID: userID, Balance: f.balances[userID]}, nil
}

func (f *fakeWallets) AdjustBalance(_ context.Context, userID string, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] += delta
	return nil
}

func (f *fakeWallets) AppendHistory(_ context.Context, entry *models.PayoutEntry) (*models.PayoutEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = uint64(len(f.history) + 1)
	f.history = append(f.history, *entry)
	return entry, nil
}

func (f *fakeWallets) GetHistoryByUserID(_ context.Context, userID string) ([]models.PayoutEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PayoutEntry
	for _, e := range f.history {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeWallets) balance(userID string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

type fakeInventory struct {
	mu       sync.Mutex
	listings map[string]*models.Listing
	pending  map[string]int
}

func newFakeInventory(listings ...*models.Listing) *fakeInventory {
	f := &fakeInventory{listings: make(map[string]*models.Listing), pending: make(map[string]int)}
	for _, l := range listings {
		cp := *l
		f.listings[l.ID] = &cp
	}
	return f
}

func (f *fakeInventory) GetListing(_ context.Context, id string) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeInventory) AdjustStock(_ context.Context, listingID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[listingID]
	if !ok {
		return models.ErrDataNotFound
	}
	if l.Stock+delta < 0 {
		return models.ErrInsufficientStock
	}
	l.Stock += delta
	return nil
}

func (f *fakeInventory) AdjustPendingOrders(_ context.Context, userID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[userID] += delta
	if f.pending[userID] < 0 {
		f.pending[userID] = 0
	}
	return nil
}

func (f *fakeInventory) stock(listingID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listings[listingID].Stock
}

type fakeOutbox struct {
	mu      sync.Mutex
	entries []models.Notification
}

func (f *fakeOutbox) Enqueue(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uint64(len(f.entries) + 1)
	n.Status = models.OutboxStatusPending
	f.entries = append(f.entries, *n)
	return nil
}

func (f *fakeOutbox) GetPending(_ context.Context, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.entries {
		if n.Status == models.OutboxStatusPending {
			out = append(out, n)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id && f.entries[i].Status == models.OutboxStatusPending {
			f.entries[i].Status = models.OutboxStatusSent
		}
	}
	return nil
}

func (f *fakeOutbox) kinds(recipient string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.entries {
		if n.RecipientID == recipient {
			out = append(out, n.Kind)
		}
	}
	return out
}

type fakeGateway struct {
	mu           sync.Mutex
	pushCalls    int
	pushErr      error
	pushResponse *gateway.PushResponse
	lastPush     gateway.PushRequest
	transactions []gateway.Transaction
	findCalls    int
}

func (f *fakeGateway) InitiatePush(_ context.Context, req gateway.PushRequest) (*gateway.PushResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushCalls++
	f.lastPush = req
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	if f.pushResponse != nil {
		return f.pushResponse, nil
	}
	return &gateway.PushResponse{Success: true, Status: "initiated", Reference: "SWIFT-" + req.ExternalReference}, nil
}

func (f *fakeGateway) FindTransaction(_ context.Context, externalRef string) (*gateway.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	for i := range f.transactions {
		if f.transactions[i].ExternalReference == externalRef {
			return &f.transactions[i], nil
		}
	}
	return nil, models.ErrDataNotFound
}
