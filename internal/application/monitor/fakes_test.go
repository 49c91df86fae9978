package monitor_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos que consumen los sweeps y el fan-out.
// ──────────────────────────────────────────────────────────────────────────────

type fakeProducts struct {
	products []*entity.Product
}

func (f *fakeProducts) Upsert(_ context.Context, p *entity.Product) error {
	for i, existing := range f.products {
		if existing.ID == p.ID {
			f.products[i] = p
			return nil
		}
	}
	f.products = append(f.products, p)
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.products))
	for _, p := range f.products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (f *fakeProducts) ListAll(_ context.Context) ([]*entity.Product, error) {
	return f.products, nil
}

type fakeActiveStates struct {
	states map[string]entity.TriState
	puts   int
}

func newFakeActiveStates() *fakeActiveStates {
	return &fakeActiveStates{states: make(map[string]entity.TriState)}
}

func (f *fakeActiveStates) GetBatch(_ context.Context, ids []string) (map[string]entity.TriState, error) {
	out := make(map[string]entity.TriState)
	for _, id := range ids {
		if st, ok := f.states[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

func (f *fakeActiveStates) PutBatch(_ context.Context, states map[string]entity.TriState) error {
	f.puts++
	for id, st := range states {
		f.states[id] = st
	}
	return nil
}

type fakeCategories struct {
	sets map[string][]string
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{sets: make(map[string][]string)}
}

func (f *fakeCategories) GetBatch(_ context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, id := range ids {
		if set, ok := f.sets[id]; ok {
			out[id] = set
		}
	}
	return out, nil
}

func (f *fakeCategories) PutBatch(_ context.Context, sets map[string][]string) error {
	for id, set := range sets {
		f.sets[id] = set
	}
	return nil
}

type fakeStock struct {
	levels map[string]int // clave "pid|store"
}

func newFakeStock() *fakeStock {
	return &fakeStock{levels: make(map[string]int)}
}

func stockKey(pid, storeID string) string { return pid + "|" + storeID }

func (f *fakeStock) Get(_ context.Context, pid, storeID string) (int, bool, error) {
	qty, ok := f.levels[stockKey(pid, storeID)]
	return qty, ok, nil
}

func (f *fakeStock) Put(_ context.Context, pid, storeID string, qty int) error {
	f.levels[stockKey(pid, storeID)] = qty
	return nil
}

type fakeWatches struct {
	watches []*entity.Watch
}

func (f *fakeWatches) Add(_ context.Context, w *entity.Watch) (bool, error) {
	for _, existing := range f.watches {
		if existing.UserID == w.UserID && existing.ProductID == w.ProductID {
			return false, nil
		}
	}
	f.watches = append(f.watches, w)
	return true, nil
}

func (f *fakeWatches) Remove(_ context.Context, userID, productID string) (bool, error) {
	for i, w := range f.watches {
		if w.UserID == userID && w.ProductID == productID {
			f.watches = append(f.watches[:i], f.watches[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWatches) ListByUser(_ context.Context, userID string) ([]*entity.Watch, error) {
	var out []*entity.Watch
	for _, w := range f.watches {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWatches) UsersWatching(_ context.Context, productID string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, w := range f.watches {
		if w.ProductID == productID && !seen[w.UserID] {
			seen[w.UserID] = true
			out = append(out, w.UserID)
		}
	}
	return out, nil
}

func (f *fakeWatches) UsersWithWatches(_ context.Context) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, w := range f.watches {
		if !seen[w.UserID] {
			seen[w.UserID] = true
			out = append(out, w.UserID)
		}
	}
	return out, nil
}

type fakeUserStores struct {
	stores []*entity.UserStore
}

func (f *fakeUserStores) Add(_ context.Context, us *entity.UserStore) (bool, error) {
	for _, existing := range f.stores {
		if existing.UserID == us.UserID && existing.StoreID == us.StoreID {
			return false, nil
		}
	}
	f.stores = append(f.stores, us)
	return true, nil
}

func (f *fakeUserStores) Remove(_ context.Context, userID, storeID string) (bool, error) {
	for i, us := range f.stores {
		if us.UserID == userID && us.StoreID == storeID {
			f.stores = append(f.stores[:i], f.stores[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStores) ListByUser(_ context.Context, userID string) ([]*entity.UserStore, error) {
	var out []*entity.UserStore
	for _, us := range f.stores {
		if us.UserID == userID {
			out = append(out, us)
		}
	}
	return out, nil
}

func (f *fakeUserStores) IsTracked(_ context.Context, userID, storeID string) (bool, error) {
	for _, us := range f.stores {
		if us.UserID == userID && us.StoreID == storeID {
			return true, nil
		}
	}
	return false, nil
}

// fakeNotifier registra los envíos; los usuarios en fail devuelven error.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]bool
}

type sentMessage struct {
	userID string
	text   string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{fail: make(map[string]bool)}
}

func (f *fakeNotifier) SendText(_ context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[userID] {
		return fmt.Errorf("chat %s inalcanzable", userID)
	}
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return nil
}

func (f *fakeNotifier) SendDocument(_ context.Context, userID, _, caption string) error {
	return f.SendText(context.Background(), userID, caption)
}

func (f *fakeNotifier) textsFor(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.userID == userID {
			out = append(out, m.text)
		}
	}
	return out
}

// fakeCatalog respuestas fijas por producto; los ids en fail devuelven error.
type fakeCatalog struct {
	active     map[string]entity.TriState
	categories map[string][]string
	stock      map[string]map[string]int // pid -> store -> qty
	fail       map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		active:     make(map[string]entity.TriState),
		categories: make(map[string][]string),
		stock:      make(map[string]map[string]int),
		fail:       make(map[string]bool),
	}
}

func (f *fakeCatalog) FetchActive(_ context.Context, pid string) (entity.TriState, error) {
	if f.fail[pid] {
		return entity.StateUnknown, fmt.Errorf("producto %s no disponible", pid)
	}
	return f.active[pid], nil
}

func (f *fakeCatalog) FetchCategories(_ context.Context, pid string) ([]string, error) {
	if f.fail[pid] {
		return nil, fmt.Errorf("producto %s no disponible", pid)
	}
	return f.categories[pid], nil
}

func (f *fakeCatalog) FetchProduct(_ context.Context, pid, _ string) (*entity.Product, error) {
	if f.fail[pid] {
		return nil, fmt.Errorf("producto %s no disponible", pid)
	}
	return &entity.Product{ID: pid, Name: "Product " + pid}, nil
}

func (f *fakeCatalog) FetchStock(_ context.Context, pid string, storeIDs []string) (map[string]int, error) {
	if f.fail[pid] {
		return nil, fmt.Errorf("producto %s no disponible", pid)
	}
	out := make(map[string]int)
	for _, id := range storeIDs {
		out[id] = f.stock[pid][id]
	}
	return out, nil
}

func (f *fakeCatalog) FetchStore(_ context.Context, storeID string) (*entity.Store, error) {
	return &entity.Store{ID: storeID, City: "Test City", Address: "123 Main St"}, nil
}
