package services

import (
	"context"
	"sync"

	"cuidaBack/internal/models"
)

type fakeTransactionStore struct {
	mu        sync.Mutex
	txs       map[string]models.Transaction
	createErr error
	updateErr error
}

func newFakeTransactionStore(seed ...models.Transaction) *fakeTransactionStore {
	s := &fakeTransactionStore{txs: make(map[string]models.Transaction)}
	for _, tx := range seed {
		s.txs[tx.Identifier] = tx
	}
	return s
}

func (s *fakeTransactionStore) Create(ctx context.Context, tx models.Transaction) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.Identifier] = tx
	return nil
}

func (s *fakeTransactionStore) GetByIdentifier(ctx context.Context, identifier string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[identifier]
	if !ok {
		return models.Transaction{}, models.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *fakeTransactionStore) GetByGatewayID(ctx context.Context, gatewayID string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.GatewayID == gatewayID {
			return tx, nil
		}
	}
	return models.Transaction{}, models.ErrTransactionNotFound
}

func (s *fakeTransactionStore) UpdateState(ctx context.Context, identifier string, upd models.TransactionUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[identifier]
	if !ok {
		return models.ErrTransactionNotFound
	}
	tx.State = upd.State
	tx.PaymentMethod = upd.PaymentMethod
	tx.InvoiceURL = upd.InvoiceURL
	tx.CallbackData = upd.CallbackData
	s.txs[identifier] = tx
	return nil
}

func (s *fakeTransactionStore) get(identifier string) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs[identifier]
}

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[string]models.Payment
	err      error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[string]models.Payment)}
}

func (s *fakePaymentStore) CreateIfAbsent(ctx context.Context, p models.Payment) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.TransactionID]; ok {
		return false, nil
	}
	s.payments[p.TransactionID] = p
	return true, nil
}

func (s *fakePaymentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

type fakeUserStore struct {
	mu      sync.Mutex
	subs    map[string]models.Subscription
	history map[string][]models.SubscriptionHistoryEntry
	slots   map[string]models.LegacySlots
	incErr  error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		subs:    make(map[string]models.Subscription),
		history: make(map[string][]models.SubscriptionHistoryEntry),
		slots:   make(map[string]models.LegacySlots),
	}
}

func (s *fakeUserStore) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[userID] = sub
	return nil
}

func (s *fakeUserStore) AppendSubscriptionHistory(ctx context.Context, userID string, entry models.SubscriptionHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[userID] = append(s.history[userID], entry)
	return nil
}

func (s *fakeUserStore) IncrementLegacySlots(ctx context.Context, userID string) (models.LegacySlots, error) {
	if s.incErr != nil {
		return models.LegacySlots{}, s.incErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.slots[userID]
	if !ok {
		cur = models.LegacySlots{AdditionalPatientSlots: 0, MaxPatientsDefault: 2}
	}
	cur.AdditionalPatientSlots++
	s.slots[userID] = cur
	return cur, nil
}

type fakeGateway struct {
	mu            sync.Mutex
	configuredErr error
	registerResp  *DebtRegistration
	registerErr   error
	registered    []DebtRequest
	statusResp    *DebtStatus
	statusErr     error
	statusCalls   int
}

func (g *fakeGateway) Configured() error { return g.configuredErr }

func (g *fakeGateway) RegisterDebt(ctx context.Context, req DebtRequest) (*DebtRegistration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registered = append(g.registered, req)
	if g.registerErr != nil {
		return nil, g.registerErr
	}
	return g.registerResp, nil
}

func (g *fakeGateway) QueryDebtStatus(ctx context.Context, identifier string) (*DebtStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.statusResp, nil
}
