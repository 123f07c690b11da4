package refgraph

import (
	"sort"
	"strings"

	"github.com/weftdev/weft/internal/item"
)

// fakeStore is an in-memory item.Store for deterministic engine tests.
type fakeStore struct {
	items map[string]*item.WorkItem
	saves int
}

var _ item.Store = (*fakeStore)(nil)

func newFakeStore(items ...item.WorkItem) *fakeStore {
	s := &fakeStore{items: map[string]*item.WorkItem{}}
	for i := range items {
		w := items[i]
		s.items[w.ID] = &w
	}
	return s
}

func (s *fakeStore) LoadActiveItems() ([]item.WorkItem, error) {
	var out []item.WorkItem
	for _, w := range s.items {
		if w.Active() {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) GetHistoricalItem(id string) (*item.WorkItem, error) {
	w, ok := s.items[id]
	if !ok || w.Active() {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *fakeStore) QueryHistory(keyword string) ([]item.WorkItem, error) {
	keyword = strings.ToLower(keyword)
	var out []item.WorkItem
	for _, w := range s.items {
		if w.Active() {
			continue
		}
		if strings.Contains(strings.ToLower(w.Content), keyword) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) SaveWorkItem(it *item.WorkItem) error {
	cp := *it
	s.items[it.ID] = &cp
	s.saves++
	return nil
}

// get returns the stored item for assertions.
func (s *fakeStore) get(id string) *item.WorkItem {
	return s.items[id]
}

// activeItem builds an open work item for tests.
func activeItem(id, content string) item.WorkItem {
	return item.WorkItem{ID: id, Type: "todo", Content: content, Status: item.StatusOpen}
}

// historicalItem builds a done work item for tests.
func historicalItem(id, content string) item.WorkItem {
	return item.WorkItem{ID: id, Type: "decision", Content: content, Status: item.StatusDone}
}
