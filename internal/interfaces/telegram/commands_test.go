package telegram

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/spiritwatch/internal/application/access"
	"github.com/jhoicas/spiritwatch/internal/domain"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos que consume el loop de comandos.
// ──────────────────────────────────────────────────────────────────────────────

type fakeUsers struct {
	byID map[string]*entity.User
}

func (f *fakeUsers) Get(_ context.Context, id string) (*entity.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) Upsert(_ context.Context, u *entity.User) error {
	f.byID[u.UserID] = u
	return nil
}

func (f *fakeUsers) ExtendSubscription(context.Context, string, int) (*time.Time, error) {
	return nil, nil
}

func (f *fakeUsers) SetAdmin(context.Context, string, bool) error { return nil }

func (f *fakeUsers) ListAll(context.Context) ([]string, error) { return nil, nil }

type fakeProducts struct {
	byID map[string]*entity.Product
}

func (f *fakeProducts) Upsert(_ context.Context, p *entity.Product) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.byID[id], nil
}

func (f *fakeProducts) ListIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeProducts) ListAll(context.Context) ([]*entity.Product, error) { return nil, nil }

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

func (f *fakeWatches) Remove(context.Context, string, string) (bool, error) { return false, nil }

func (f *fakeWatches) ListByUser(context.Context, string) ([]*entity.Watch, error) {
	return f.watches, nil
}

func (f *fakeWatches) UsersWatching(context.Context, string) ([]string, error) { return nil, nil }

func (f *fakeWatches) UsersWithWatches(context.Context) ([]string, error) { return nil, nil }

type fakeCatalog struct {
	products map[string]*entity.Product
}

func (f *fakeCatalog) FetchActive(context.Context, string) (entity.TriState, error) {
	return entity.StateUnknown, nil
}

func (f *fakeCatalog) FetchCategories(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeCatalog) FetchProduct(_ context.Context, pid, _ string) (*entity.Product, error) {
	p, ok := f.products[pid]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) FetchStock(context.Context, string, []string) (map[string]int, error) {
	return nil, nil
}

func (f *fakeCatalog) FetchStore(context.Context, string) (*entity.Store, error) {
	return nil, nil
}

type fakeNotifier struct {
	texts []string
}

func (f *fakeNotifier) SendText(_ context.Context, _ string, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeNotifier) SendDocument(context.Context, string, string, string) error { return nil }

func command(text string, cmdLen int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
		From:     &tgbotapi.User{FirstName: "Alice"},
		Chat:     &tgbotapi.Chat{ID: 7},
	}
}

func newLoop(catalog *fakeCatalog, products *fakeProducts, watches *fakeWatches, notifier *fakeNotifier) *CommandLoop {
	users := &fakeUsers{byID: map[string]*entity.User{
		"7": {UserID: "7", IsAdmin: true},
	}}
	return &CommandLoop{
		notifier: notifier,
		users:    access.NewUserService(users, 14, 30, logger.Nop()),
		products: products,
		watches:  watches,
		catalog:  catalog,
		refStore: "5102",
		log:      logger.Nop(),
	}
}

// El alta por /add debe dejar el producto en la tabla observada: los sweeps de
// active/categoría y el reporte diario recorren ListIDs, no la watchlist.
func TestHandle_AddPersisteElProductoObservado(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*entity.Product{
		"000012345": {ID: "000012345", Name: "Queen's Share Single Barrel", InStock: 3},
	}}
	products := &fakeProducts{byID: map[string]*entity.Product{}}
	watches := &fakeWatches{}
	notifier := &fakeNotifier{}
	loop := newLoop(catalog, products, watches, notifier)

	err := loop.handle(context.Background(), command("/add 000012345", 4))
	require.NoError(t, err)

	// Fila de watchlist creada.
	require.Len(t, watches.watches, 1)
	assert.Equal(t, "Queen's Share Single Barrel", watches.watches[0].ProductName)

	// Y el producto quedó visible para el conjunto que recorren los sweeps.
	ids, err := products.ListIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"000012345"}, ids)

	stored, err := products.GetByID(context.Background(), "000012345")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.InStock)
}

// Un producto inexistente en el proveedor no deja rastro: ni watch ni fila
// observada, solo la respuesta de error al usuario.
func TestHandle_AddProductoInexistenteNoPersisteNada(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*entity.Product{}}
	products := &fakeProducts{byID: map[string]*entity.Product{}}
	watches := &fakeWatches{}
	notifier := &fakeNotifier{}
	loop := newLoop(catalog, products, watches, notifier)

	err := loop.handle(context.Background(), command("/add 000099999", 4))
	require.NoError(t, err)

	assert.Empty(t, watches.watches)
	ids, err := products.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "was not found")
}

// Repetir /add refresca la foto del producto pero no duplica el watch.
func TestHandle_AddRepetidoRefrescaSinDuplicar(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*entity.Product{
		"000012345": {ID: "000012345", Name: "Queen's Share Single Barrel", InStock: 3},
	}}
	products := &fakeProducts{byID: map[string]*entity.Product{}}
	watches := &fakeWatches{}
	notifier := &fakeNotifier{}
	loop := newLoop(catalog, products, watches, notifier)

	require.NoError(t, loop.handle(context.Background(), command("/add 000012345", 4)))
	catalog.products["000012345"].InStock = 9
	require.NoError(t, loop.handle(context.Background(), command("/add 000012345", 4)))

	require.Len(t, watches.watches, 1)
	stored, err := products.GetByID(context.Background(), "000012345")
	require.NoError(t, err)
	assert.Equal(t, 9, stored.InStock)
}
