// Package storagetest provides an in-memory, transactional implementation of
// storage.IStorage for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
)

type state struct {
	accounts     map[uuid.UUID]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction
	owners       map[uuid.UUID]domain.Owner
}

func newState() *state {
	return &state{
		accounts:     make(map[uuid.UUID]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		owners:       make(map[uuid.UUID]domain.Owner),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, a := range s.accounts {
		c.accounts[id] = a.Clone()
	}
	for id, t := range s.transactions {
		c.transactions[id] = t.Clone()
	}
	for id, o := range s.owners {
		c.owners[id] = o
	}
	return c
}

// Store keeps committed state in memory. Write transactions are serialized and
// work on a private copy that replaces the committed state on Commit.
type Store struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex
	state  *state

	faultMu sync.Mutex
	faults  map[string]error

	countMu   sync.Mutex
	commits   int
	rollbacks int
}

var _ storage.IStorage = (*Store)(nil)

func New() *Store {
	return &Store{
		state:  newState(),
		faults: make(map[string]error),
	}
}

// FailOn makes the named operation return err for the given id until cleared
// with a nil err. Operation names are "<table>.<Method>", e.g. "transactions.SoftDeleteByAccount".
func (s *Store) FailOn(op string, id uuid.UUID, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	key := faultKey(op, id)
	if err == nil {
		delete(s.faults, key)
		return
	}
	s.faults[key] = err
}

func (s *Store) fault(op string, id uuid.UUID) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[faultKey(op, id)]
}

func faultKey(op string, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s", op, id)
}

func (s *Store) Read() *storage.Reader {
	acc := committed{s: s}
	return &storage.Reader{
		Accounts:     &accounts{acc: acc, store: s},
		Transactions: &transactions{acc: acc, store: s},
		Clients:      &clients{acc: acc},
	}
}

func (s *Store) Write(ctx context.Context) (*storage.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	s.dataMu.RLock()
	st := s.state.clone()
	s.dataMu.RUnlock()

	tx := &memTx{store: s, state: st}
	acc := pending{st: st}
	return storage.NewWriterWithTx(tx,
		&accounts{acc: acc, store: s},
		&transactions{acc: acc, store: s},
		&clients{acc: acc},
	), nil
}

// Commits returns how many write transactions were committed.
func (s *Store) Commits() int {
	s.countMu.Lock()
	defer s.countMu.Unlock()
	return s.commits
}

// Rollbacks returns how many write transactions were rolled back.
func (s *Store) Rollbacks() int {
	s.countMu.Lock()
	defer s.countMu.Unlock()
	return s.rollbacks
}

type memTx struct {
	store *Store
	state *state
	done  bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	t.store.dataMu.Lock()
	t.store.state = t.state
	t.store.dataMu.Unlock()
	t.store.countMu.Lock()
	t.store.commits++
	t.store.countMu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.countMu.Lock()
	t.store.rollbacks++
	t.store.countMu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

type accessor interface {
	with(fn func(st *state) error) error
}

type committed struct {
	s *Store
}

func (c committed) with(fn func(st *state) error) error {
	c.s.dataMu.RLock()
	defer c.s.dataMu.RUnlock()
	return fn(c.s.state)
}

type pending struct {
	st *state
}

func (p pending) with(fn func(st *state) error) error {
	return fn(p.st)
}

// -- seeding and inspection --

func (s *Store) AddOwner(o domain.Owner) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.state.owners[o.ClientID] = o
}

func (s *Store) AddAccount(a *domain.Account) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.state.accounts[a.ID] = a.Clone()
}

func (s *Store) AddTransaction(t *domain.Transaction) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.state.transactions[t.ID] = t.Clone()
}

// Account returns the committed account regardless of soft deletion, or nil.
func (s *Store) Account(id uuid.UUID) *domain.Account {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.state.accounts[id].Clone()
}

// Transactions returns every committed transaction of the account regardless of soft deletion.
func (s *Store) Transactions(accountID uuid.UUID) []*domain.Transaction {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	var out []*domain.Transaction
	for _, t := range s.state.transactions {
		if t.AccountID == accountID {
			out = append(out, t.Clone())
		}
	}
	return out
}
