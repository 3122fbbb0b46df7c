package coldstore

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// MemoryGateway keeps snapshots in process. It backs local runs with
// coldstore.driver=memory and the job tests; SetReachable simulates outages.
type MemoryGateway struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*domain.Snapshot
	reachable bool
}

var _ Gateway = (*MemoryGateway)(nil)

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		snapshots: make(map[uuid.UUID]*domain.Snapshot),
		reachable: true,
	}
}

func (m *MemoryGateway) SetReachable(reachable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reachable = reachable
}

// Len returns the number of archived accounts.
func (m *MemoryGateway) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

func (m *MemoryGateway) IsReachable(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reachable && ctx.Err() == nil
}

func (m *MemoryGateway) Find(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.reachable {
		return nil, domain.ErrColdStoreUnreachable
	}
	s, ok := m.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySnapshot(s, true), nil
}

func (m *MemoryGateway) List(ctx context.Context, query sqlconfig.AccountQuery) (*ListResult, error) {
	query = query.Normalize()
	m.mu.RLock()
	if !m.reachable {
		m.mu.RUnlock()
		return nil, domain.ErrColdStoreUnreachable
	}
	var matched []*domain.Snapshot
	for _, s := range m.snapshots {
		if query.Matches(s.Account, s.Owner) {
			matched = append(matched, copySnapshot(s, false))
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return query.Less(matched[i].Account, matched[i].Owner, matched[j].Account, matched[j].Owner)
	})
	total := len(matched)
	start := min(query.Offset(), total)
	end := min(start+query.Limit, total)
	return &ListResult{Items: matched[start:end], Total: total}, nil
}

func (m *MemoryGateway) Upsert(ctx context.Context, snapshot *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.reachable {
		return domain.ErrColdStoreUnreachable
	}
	m.snapshots[snapshot.Account.ID] = copySnapshot(snapshot, true)
	return nil
}

func (m *MemoryGateway) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.reachable {
		return domain.ErrColdStoreUnreachable
	}
	delete(m.snapshots, id)
	return nil
}

func copySnapshot(s *domain.Snapshot, withTransactions bool) *domain.Snapshot {
	txs := s.Transactions
	if !withTransactions {
		txs = nil
	}
	return domain.NewSnapshot(s.Account, s.Owner, txs, s.ArchivedAt)
}
