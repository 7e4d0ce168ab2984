package pending

import (
	"context"
	"sync"

	"github.com/qualitypulse/tracker/internal/domain/entries"
)

// MemoryArchive is the in-process counterpart of ArchiveRepo.
type MemoryArchive struct {
	mu  sync.Mutex
	set ArchiveSet
}

func NewMemoryArchive() *MemoryArchive { return &MemoryArchive{set: ArchiveSet{}} }

func (m *MemoryArchive) Snapshot(context.Context) (ArchiveSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(ArchiveSet, len(m.set))
	for k := range m.set {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *MemoryArchive) Archive(_ context.Context, client, project string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set[entries.KeyOf(client, project)] = struct{}{}
	return nil
}

func (m *MemoryArchive) Unarchive(_ context.Context, client, project string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.set, entries.KeyOf(client, project))
	return nil
}
