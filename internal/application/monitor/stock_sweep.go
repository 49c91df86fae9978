package monitor

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// StockSweep monitorea la cantidad en stock por (producto, tienda) y alerta
// solo en reposiciones (curr > prev). Restringido a la ventana horaria de
// negocio. Para cada producto seguido consulta una sola vez la unión de
// tiendas de todos sus watchers; el fan-out filtra después por watcher.
type StockSweep struct {
	watches    repository.WatchRepository
	userStores repository.UserStoreRepository
	stock      repository.StockLevelRepository
	catalog    CatalogAPI
	fanout     *Fanout
	poll       PollConfig
	start, end string // "HH:MM", ventana local de alertas
	now        func() time.Time
	log        *logger.Logger
}

// NewStockSweep construye el sweep con su ventana de negocio ("08:00", "21:00").
func NewStockSweep(
	watches repository.WatchRepository,
	userStores repository.UserStoreRepository,
	stock repository.StockLevelRepository,
	catalog CatalogAPI,
	fanout *Fanout,
	poll PollConfig,
	businessStart, businessEnd string,
	log *logger.Logger,
) *StockSweep {
	return &StockSweep{
		watches:    watches,
		userStores: userStores,
		stock:      stock,
		catalog:    catalog,
		fanout:     fanout,
		poll:       poll,
		start:      businessStart,
		end:        businessEnd,
		now:        time.Now,
		log:        log,
	}
}

// storeRef tienda con sus datos de despliegue para el texto de la alerta.
type storeRef struct {
	id, city, addr string
}

// Run ejecuta un ciclo completo. Fuera de la ventana de negocio no hace nada.
func (s *StockSweep) Run(ctx context.Context) error {
	if !s.withinBusinessHours() {
		s.log.Debug().Str("start", s.start).Str("end", s.end).Msg("sweep stock: fuera de horario")
		return nil
	}

	productStores, names, err := s.collectTargets(ctx)
	if err != nil {
		return err
	}
	if len(productStores) == 0 {
		s.log.Debug().Msg("sweep stock: sin pares producto-tienda que revisar")
		return nil
	}

	pids := make([]string, 0, len(productStores))
	for pid := range productStores {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	results := Poll(ctx, s.poll, pids, func(ctx context.Context, pid string) (map[string]int, error) {
		ids := make([]string, 0, len(productStores[pid]))
		for _, st := range productStores[pid] {
			ids = append(ids, st.id)
		}
		return s.catalog.FetchStock(ctx, pid, ids)
	})

	events := 0
	for _, res := range results {
		if res.Err != nil {
			s.log.Debug().Err(res.Err).Str("product_id", res.ID).Msg("fetch stock omitido")
			continue
		}
		for _, st := range productStores[res.ID] {
			curr := res.Value[st.id] // tienda ausente de la respuesta = 0

			prev, known, err := s.stock.Get(ctx, res.ID, st.id)
			if err != nil {
				s.log.Error().Err(err).Str("product_id", res.ID).Str("store_id", st.id).Msg("leer caché de stock")
				continue
			}

			if ClassifyStock(prev, known, curr) {
				events++
				s.fanout.Notify(ctx, &entity.Event{
					ID:          uuid.NewString(),
					Kind:        entity.EventStockIncreased,
					ProductID:   res.ID,
					ProductName: names[res.ID],
					StoreID:     st.id,
					StoreCity:   st.city,
					StoreAddr:   st.addr,
					PrevQty:     prev,
					CurrQty:     curr,
					At:          time.Now(),
				})
			}

			// La caché se actualiza siempre, haya o no cambio.
			if err := s.stock.Put(ctx, res.ID, st.id, curr); err != nil {
				s.log.Error().Err(err).Str("product_id", res.ID).Str("store_id", st.id).Msg("escribir caché de stock")
			}
		}
	}

	s.log.Info().Int("products", len(pids)).Int("events", events).Msg("sweep stock completado")
	return nil
}

// collectTargets arma, por producto seguido, la unión de tiendas rastreadas
// por sus watchers. Productos sin watcher con tiendas quedan fuera.
func (s *StockSweep) collectTargets(ctx context.Context) (map[string][]storeRef, map[string]string, error) {
	users, err := s.watches.UsersWithWatches(ctx)
	if err != nil {
		return nil, nil, err
	}

	productStores := make(map[string][]storeRef)
	names := make(map[string]string)
	seen := make(map[string]map[string]bool) // pid -> store ids ya agregados

	for _, userID := range users {
		stores, err := s.userStores.ListByUser(ctx, userID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("listar tiendas del usuario")
			continue
		}
		if len(stores) == 0 {
			continue
		}
		watchlist, err := s.watches.ListByUser(ctx, userID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("listar watchlist del usuario")
			continue
		}
		for _, w := range watchlist {
			if names[w.ProductID] == "" {
				names[w.ProductID] = w.ProductName
			}
			if seen[w.ProductID] == nil {
				seen[w.ProductID] = make(map[string]bool)
			}
			for _, st := range stores {
				if seen[w.ProductID][st.StoreID] {
					continue
				}
				seen[w.ProductID][st.StoreID] = true
				productStores[w.ProductID] = append(productStores[w.ProductID], storeRef{
					id:   st.StoreID,
					city: st.City,
					addr: st.Address,
				})
			}
		}
	}
	return productStores, names, nil
}

// withinBusinessHours evalúa la ventana HH:MM local. Ventanas mal formadas
// dejan pasar el sweep.
func (s *StockSweep) withinBusinessHours() bool {
	start, err1 := time.Parse("15:04", s.start)
	end, err2 := time.Parse("15:04", s.end)
	if err1 != nil || err2 != nil {
		return true
	}
	now := s.now()
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= start.Hour()*60+start.Minute() && minutes <= end.Hour()*60+end.Minute()
}
