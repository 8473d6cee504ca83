package ethereum

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// pendingNonceReader is satisfied by *ethclient.Client.
type pendingNonceReader interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager hands out nonces for (endpoint, account) pairs shared by all
// VUs and clients in the process, so concurrent implicit transactions from one
// account do not collide. Each entry is seeded lazily from the pending nonce.
type NonceManager struct {
	mu      sync.Mutex
	entries map[string]*nonceEntry
}

type nonceEntry struct {
	mu    sync.Mutex
	ready bool
	next  uint64
}

//nolint:gochecknoglobals // Process-wide nonce coordination across VUs.
var globalNonceManager = &NonceManager{}

func (m *NonceManager) entry(endpoint string, addr common.Address) *nonceEntry {
	key := endpoint + "|" + addr.Hex()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]*nonceEntry)
	}

	e, ok := m.entries[key]
	if !ok {
		e = &nonceEntry{}
		m.entries[key] = e
	}

	return e
}

// Acquire reserves and returns the next nonce for addr on endpoint.
func (m *NonceManager) Acquire(ctx context.Context, reader pendingNonceReader, endpoint string, addr common.Address) (uint64, error) {
	e := m.entry(endpoint, addr)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		nonce, err := reader.PendingNonceAt(ctx, addr)
		if err != nil {
			return 0, fmt.Errorf("failed to get nonce: %w", err)
		}

		e.next = nonce
		e.ready = true
	}

	nonce := e.next
	e.next++

	return nonce, nil
}

// Refresh resynchronizes the entry with the node's pending nonce. On failure
// the entry is reset so the next Acquire reads from the node again.
func (m *NonceManager) Refresh(ctx context.Context, reader pendingNonceReader, endpoint string, addr common.Address) error {
	e := m.entry(endpoint, addr)

	e.mu.Lock()
	defer e.mu.Unlock()

	nonce, err := reader.PendingNonceAt(ctx, addr)
	if err != nil {
		e.ready = false
		e.next = 0

		return fmt.Errorf("failed to get nonce: %w", err)
	}

	e.next = nonce
	e.ready = true

	return nil
}
