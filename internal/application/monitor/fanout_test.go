package monitor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/spiritwatch/internal/application/monitor"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// Un producto con dos watchers: ambos reciben la alerta de activación.
func TestFanout_AlertaATodosLosWatchers(t *testing.T) {
	watches := &fakeWatches{}
	watches.Add(context.Background(), &entity.Watch{UserID: "u1", ProductID: "p1", ProductName: "Rare Pour"})
	watches.Add(context.Background(), &entity.Watch{UserID: "u2", ProductID: "p1", ProductName: "Rare Pour"})
	notifier := newFakeNotifier()

	fanout := monitor.NewFanout(watches, &fakeUserStores{}, notifier, logger.Nop())
	sent := fanout.Notify(context.Background(), &entity.Event{
		Kind:        entity.EventBecameActive,
		ProductID:   "p1",
		ProductName: "Rare Pour",
		ProductURL:  "https://example.com/p1",
	})

	assert.Equal(t, 2, sent)
	require.Len(t, notifier.textsFor("u1"), 1)
	assert.Contains(t, notifier.textsFor("u1")[0], "Rare Pour")
	assert.Contains(t, notifier.textsFor("u1")[0], "ACTIVE")
	assert.Len(t, notifier.textsFor("u2"), 1)
}

// Un destinatario inalcanzable no impide la entrega al resto.
func TestFanout_FalloDeUnDestinatarioAislado(t *testing.T) {
	watches := &fakeWatches{}
	watches.Add(context.Background(), &entity.Watch{UserID: "u1", ProductID: "p1"})
	watches.Add(context.Background(), &entity.Watch{UserID: "u2", ProductID: "p1"})
	watches.Add(context.Background(), &entity.Watch{UserID: "u3", ProductID: "p1"})
	notifier := newFakeNotifier()
	notifier.fail["u2"] = true

	fanout := monitor.NewFanout(watches, &fakeUserStores{}, notifier, logger.Nop())
	sent := fanout.Notify(context.Background(), &entity.Event{
		Kind:      entity.EventBecameInactive,
		ProductID: "p1",
	})

	assert.Equal(t, 2, sent, "los otros dos destinatarios deben recibir la alerta")
	assert.Len(t, notifier.textsFor("u1"), 1)
	assert.Empty(t, notifier.textsFor("u2"))
	assert.Len(t, notifier.textsFor("u3"), 1)
}

// Las alertas de stock solo llegan a los watchers que además siguen la tienda.
func TestFanout_StockFiltraPorTiendaSeguida(t *testing.T) {
	watches := &fakeWatches{}
	watches.Add(context.Background(), &entity.Watch{UserID: "u1", ProductID: "p1"})
	watches.Add(context.Background(), &entity.Watch{UserID: "u2", ProductID: "p1"})
	userStores := &fakeUserStores{}
	userStores.Add(context.Background(), &entity.UserStore{UserID: "u1", StoreID: "s9"})
	notifier := newFakeNotifier()

	fanout := monitor.NewFanout(watches, userStores, notifier, logger.Nop())
	sent := fanout.Notify(context.Background(), &entity.Event{
		Kind:        entity.EventStockIncreased,
		ProductID:   "p1",
		ProductName: "Rare Pour",
		StoreID:     "s9",
		StoreCity:   "Pittsburgh",
		StoreAddr:   "100 Liberty Ave",
		PrevQty:     0,
		CurrQty:     12,
	})

	assert.Equal(t, 1, sent, "solo quien sigue la tienda recibe la alerta")
	require.Len(t, notifier.textsFor("u1"), 1)
	assert.Contains(t, notifier.textsFor("u1")[0], "0 ➜ 12")
	assert.Contains(t, notifier.textsFor("u1")[0], "Pittsburgh")
	assert.Empty(t, notifier.textsFor("u2"))
}

// Producto sin watchers: el evento se descarta sin envíos.
func TestFanout_SinWatchersNoEnvia(t *testing.T) {
	notifier := newFakeNotifier()
	fanout := monitor.NewFanout(&fakeWatches{}, &fakeUserStores{}, notifier, logger.Nop())

	sent := fanout.Notify(context.Background(), &entity.Event{
		Kind:      entity.EventBecameActive,
		ProductID: "p-nadie",
	})
	assert.Zero(t, sent)
	assert.Empty(t, notifier.sent)
}
