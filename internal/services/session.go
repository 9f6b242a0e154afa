package services

import (
	"context"
	"sync"

	"warungpos/internal/domain"
	"warungpos/internal/observe"
	"warungpos/internal/store"
)

// Session is the per-user application state: the catalog cache, the
// transaction mirror and the cart. Built on sign-in, torn down on
// sign-out.
type Session struct {
	UserID       string
	Catalog      *CatalogCache
	Cart         *Cart
	transactions *observe.Value[[]domain.Transaction]
	cancelTxs    func()
}

// Transactions returns the current timestamp-descending snapshot.
func (s *Session) Transactions() []domain.Transaction {
	return s.transactions.Get()
}

// TransactionUpdates exposes the live transaction mirror.
func (s *Session) TransactionUpdates() *observe.Value[[]domain.Transaction] {
	return s.transactions
}

func (s *Session) close() {
	s.Catalog.Close()
	s.cancelTxs()
	s.Cart.Clear()
}

// SessionManager owns session lifecycle. The composition root binds it
// to the identity provider's state stream; handlers resolve sessions by
// user id.
type SessionManager struct {
	store store.Store

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(st store.Store) *SessionManager {
	return &SessionManager{store: st, sessions: make(map[string]*Session)}
}

// OnSessionStart establishes the catalog and transaction subscriptions
// for uid and hands back the session. Idempotent for an already-live
// session.
func (m *SessionManager) OnSessionStart(ctx context.Context, uid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[uid]; ok {
		return s, nil
	}

	catalog, err := NewCatalogCache(ctx, m.store, uid)
	if err != nil {
		return nil, err
	}
	txs, cancelTxs, err := m.store.WatchTransactions(ctx, uid)
	if err != nil {
		catalog.Close()
		return nil, err
	}

	s := &Session{
		UserID:       uid,
		Catalog:      catalog,
		Cart:         NewCart(),
		transactions: txs,
		cancelTxs:    cancelTxs,
	}
	m.sessions[uid] = s
	return s, nil
}

// OnSessionEnd cancels the subscriptions, clears the cache and the cart
// (no cross-session cart leakage) and forgets the session.
func (m *SessionManager) OnSessionEnd(uid string) {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()
	if ok {
		s.close()
	}
}

// Get returns the live session for uid, if any.
func (m *SessionManager) Get(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	return s, ok
}

// Bind wires the manager to the auth state stream. It returns a stop
// func. An Authenticated state starts that user's session; an
// Unauthenticated state ends the session of the user it names. Several
// users can be signed in at once, so one user's sign-in or sign-out
// never touches another's session.
func (m *SessionManager) Bind(ctx context.Context, auth *AuthService) func() {
	updates, cancel := auth.State().Subscribe()
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case st, ok := <-updates:
				if !ok {
					return
				}
				switch st.Status {
				case StatusAuthenticated:
					// Failure here is retried lazily on the user's
					// next request.
					_, _ = m.OnSessionStart(ctx, st.UserID)
				case StatusUnauthenticated:
					if st.UserID != "" {
						m.OnSessionEnd(st.UserID)
					}
				}
			case <-stop:
				return
			}
		}
	}()
	return func() {
		close(stop)
		cancel()
	}
}
