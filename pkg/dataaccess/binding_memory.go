package dataaccess

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Jacobbrewer1/intercord/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
)

const memoryBindingDalName = "memory_binding_dal"

type memoryBindingDal struct {
	// l is the logger.
	l *slog.Logger

	mtx      sync.RWMutex
	bindings map[string]entities.Binding
}

// NewMemoryBindingDal creates a binding registry held in process memory. Nothing survives a restart.
func NewMemoryBindingDal(l *slog.Logger) BindingDal {
	return &memoryBindingDal{
		l:        l.With(slog.String(logging.KeyDal, memoryBindingDalName)),
		bindings: make(map[string]entities.Binding),
	}
}

func (m *memoryBindingDal) SaveBinding(_ context.Context, binding *entities.Binding) error {
	monitoring.StoreTotalRequests.WithLabelValues(memoryBindingDalName, "save_binding").Inc()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	// Store a copy so the caller cannot mutate the registry.
	m.bindings[binding.ChannelID] = *binding
	m.l.Debug("Binding saved",
		slog.String(logging.KeyChannelID, binding.ChannelID),
		slog.String(logging.KeyTicketID, binding.TicketID),
		slog.Int("total", len(m.bindings)),
	)
	return nil
}

func (m *memoryBindingDal) GetBinding(_ context.Context, channelID string) (*entities.Binding, error) {
	monitoring.StoreTotalRequests.WithLabelValues(memoryBindingDalName, "get_binding").Inc()

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	b, ok := m.bindings[channelID]
	if !ok {
		return nil, ErrBindingNotFound
	}
	return &b, nil
}

func (m *memoryBindingDal) DeleteBinding(_ context.Context, channelID string) (bool, error) {
	monitoring.StoreTotalRequests.WithLabelValues(memoryBindingDalName, "delete_binding").Inc()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	_, ok := m.bindings[channelID]
	delete(m.bindings, channelID)
	return ok, nil
}

func (m *memoryBindingDal) ListBindings(_ context.Context) ([]*entities.Binding, error) {
	monitoring.StoreTotalRequests.WithLabelValues(memoryBindingDalName, "list_bindings").Inc()

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	list := make([]*entities.Binding, 0, len(m.bindings))
	for _, b := range m.bindings {
		b := b
		list = append(list, &b)
	}

	// Oldest first so the listing is stable.
	sort.Slice(list, func(i, j int) bool {
		ti, tj := list[i].RegisteredAt.Time(), list[j].RegisteredAt.Time()
		if ti.Equal(tj) {
			return list[i].ChannelID < list[j].ChannelID
		}
		return ti.Before(tj)
	})
	return list, nil
}

func (m *memoryBindingDal) CountBindings(_ context.Context) (int64, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return int64(len(m.bindings)), nil
}
