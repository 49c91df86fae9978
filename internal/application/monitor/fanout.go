package monitor

import (
	"context"
	"fmt"

	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// Fanout distribuye un evento a todos los suscriptores interesados: un mensaje
// por (suscriptor, evento). Cada envío está aislado: un destinatario
// inalcanzable se loguea y no afecta al resto ni aborta el sweep. No hay
// reintentos dentro del ciclo; el sweep que disparó el evento es recurrente.
type Fanout struct {
	watches    repository.WatchRepository
	userStores repository.UserStoreRepository
	notifier   Notifier
	log        *logger.Logger
}

// NewFanout construye el distribuidor de alertas.
func NewFanout(
	watches repository.WatchRepository,
	userStores repository.UserStoreRepository,
	notifier Notifier,
	log *logger.Logger,
) *Fanout {
	return &Fanout{watches: watches, userStores: userStores, notifier: notifier, log: log}
}

// Notify resuelve los interesados y envía. Para eventos de stock el watcher
// además debe seguir la tienda del evento. Devuelve cuántos envíos salieron.
func (f *Fanout) Notify(ctx context.Context, ev *entity.Event) int {
	watchers, err := f.watches.UsersWatching(ctx, ev.ProductID)
	if err != nil {
		f.log.Error().Err(err).Str("product_id", ev.ProductID).Msg("resolver watchers")
		return 0
	}

	text := formatEvent(ev)
	sent := 0
	for _, userID := range watchers {
		if ev.Kind == entity.EventStockIncreased {
			tracked, err := f.userStores.IsTracked(ctx, userID, ev.StoreID)
			if err != nil {
				f.log.Error().Err(err).Str("user_id", userID).Msg("resolver tienda seguida")
				continue
			}
			if !tracked {
				continue
			}
		}
		if err := f.notifier.SendText(ctx, userID, text); err != nil {
			f.log.Warn().Err(err).
				Str("user_id", userID).
				Str("event", string(ev.Kind)).
				Msg("envío de alerta falló")
			continue
		}
		sent++
	}
	return sent
}

// formatEvent arma el texto HTML de la alerta según su tipo.
func formatEvent(ev *entity.Event) string {
	switch ev.Kind {
	case entity.EventBecameActive:
		return fmt.Sprintf("🔥 <a href='%s'>%s</a> is ACTIVE!", ev.ProductURL, ev.ProductName)
	case entity.EventBecameInactive:
		return fmt.Sprintf("⚠️ %s is INACTIVE.", ev.ProductName)
	case entity.EventCategoryEntered:
		return fmt.Sprintf("📣 %s added for %s!", ev.Category, ev.ProductName)
	case entity.EventStockIncreased:
		return fmt.Sprintf(
			"🔔 <b>Stock Added!</b>\n\n<b>Product:</b> %s - %s\n<b>Store:</b> %s - %s - %s\n<b>Quantity:</b> <b>%d ➜ %d</b>",
			ev.ProductID, ev.ProductName, ev.StoreID, ev.StoreCity, ev.StoreAddr, ev.PrevQty, ev.CurrQty,
		)
	default:
		return fmt.Sprintf("%s: %s", ev.Kind, ev.ProductName)
	}
}
