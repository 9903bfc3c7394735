package gmail

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// LabelManager provides idempotent get-or-create and delete of the
// hierarchical labels under one parent. Get-or-create for a given
// fully-qualified name is guarded by a per-name lock so concurrent
// workers cannot create duplicates.
type LabelManager struct {
	api    API
	parent string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]*Label // fully-qualified name -> label
}

// NewLabelManager creates a LabelManager for the labels nested under
// parent.
func NewLabelManager(api API, parent string) *LabelManager {
	return &LabelManager{
		api:    api,
		parent: parent,
		locks:  make(map[string]*sync.Mutex),
		cache:  make(map[string]*Label),
	}
}

// Parent returns the parent label name.
func (m *LabelManager) Parent() string { return m.parent }

// QualifiedName returns the fully-qualified label name for a category.
func (m *LabelManager) QualifiedName(category string) string {
	return m.parent + "/" + category
}

func (m *LabelManager) nameLock(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[name] = lock
	}
	return lock
}

func (m *LabelManager) cached(name string) *Label {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[name]
}

func (m *LabelManager) store(label *Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[label.Name] = label
}

// EnsureParent idempotently creates the parent label if absent.
func (m *LabelManager) EnsureParent(ctx context.Context) (*Label, error) {
	return m.getOrCreate(ctx, m.parent)
}

// GetOrCreate returns the label for a category, creating it on first
// reference. A creation race (duplicate attempted concurrently) is
// resolved by re-listing, not treated as fatal.
func (m *LabelManager) GetOrCreate(ctx context.Context, category string) (*Label, error) {
	return m.getOrCreate(ctx, m.QualifiedName(category))
}

func (m *LabelManager) getOrCreate(ctx context.Context, name string) (*Label, error) {
	lock := m.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	if label := m.cached(name); label != nil {
		return label, nil
	}

	label, err := m.find(ctx, name)
	if err != nil {
		return nil, err
	}
	if label != nil {
		m.store(label)
		return label, nil
	}

	created, err := m.api.CreateLabel(ctx, name)
	if err != nil {
		// Another client may have created the label between the list
		// and the create. Re-list before giving up.
		if label, findErr := m.find(ctx, name); findErr == nil && label != nil {
			m.store(label)
			return label, nil
		}
		return nil, fmt.Errorf("failed to get or create label %s: %w", name, err)
	}

	m.store(created)
	return created, nil
}

func (m *LabelManager) find(ctx context.Context, name string) (*Label, error) {
	labels, err := m.api.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	for _, label := range labels {
		if label.Name == name {
			return label, nil
		}
	}
	return nil, nil
}

// CategoryLabels returns every label nested under the parent, i.e.
// labels whose name starts with "parent/". The parent itself is not
// included.
func (m *LabelManager) CategoryLabels(ctx context.Context) ([]*Label, error) {
	labels, err := m.api.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	prefix := m.parent + "/"
	var out []*Label
	for _, label := range labels {
		if strings.HasPrefix(label.Name, prefix) {
			out = append(out, label)
		}
	}
	return out, nil
}

// DeleteCategoryLabels removes every label nested under the parent,
// leaving the parent itself untouched. Returns the number of labels
// deleted. Invoked at the start of taxonomy regeneration when a prior
// taxonomy exists.
func (m *LabelManager) DeleteCategoryLabels(ctx context.Context) (int, error) {
	labels, err := m.CategoryLabels(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, label := range labels {
		if err := m.api.DeleteLabel(ctx, label.ID); err != nil {
			return deleted, fmt.Errorf("failed to delete label %s: %w", label.Name, err)
		}
		deleted++
	}

	m.mu.Lock()
	m.cache = make(map[string]*Label)
	m.mu.Unlock()

	return deleted, nil
}
