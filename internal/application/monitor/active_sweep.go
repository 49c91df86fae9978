package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// ActiveSweep monitorea el flag active de todo el catálogo seguido (cadencia
// rápida). Compara contra product_active_cache y alerta en las transiciones
// true<->false; la primera observación solo se almacena.
type ActiveSweep struct {
	products repository.ProductRepository
	states   repository.ActiveStateRepository
	catalog  CatalogAPI
	fanout   *Fanout
	poll     PollConfig
	log      *logger.Logger
}

// NewActiveSweep construye el sweep.
func NewActiveSweep(
	products repository.ProductRepository,
	states repository.ActiveStateRepository,
	catalog CatalogAPI,
	fanout *Fanout,
	poll PollConfig,
	log *logger.Logger,
) *ActiveSweep {
	return &ActiveSweep{products: products, states: states, catalog: catalog, fanout: fanout, poll: poll, log: log}
}

// Run ejecuta un ciclo completo del sweep. Los ids cuyo fetch falló quedan
// fuera de la clasificación y de la escritura de caché: conservan su valor
// previo intacto.
func (s *ActiveSweep) Run(ctx context.Context) error {
	ids, err := s.products.ListIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		s.log.Debug().Msg("sweep active: sin productos que monitorear")
		return nil
	}

	prev, err := s.states.GetBatch(ctx, ids)
	if err != nil {
		return err
	}

	results := Poll(ctx, s.poll, ids, s.catalog.FetchActive)

	info := s.productInfo(ctx)
	fetched := make(map[string]entity.TriState, len(results))
	var events []*entity.Event

	for _, res := range results {
		if res.Err != nil {
			s.log.Debug().Err(res.Err).Str("product_id", res.ID).Msg("fetch active omitido")
			continue
		}
		fetched[res.ID] = res.Value

		prevState, known := prev[res.ID]
		if !known {
			continue // primera observación: almacenar sin alertar
		}
		if kind, ok := ClassifyActive(prevState, res.Value); ok {
			p := info[res.ID]
			events = append(events, &entity.Event{
				ID:          uuid.NewString(),
				Kind:        kind,
				ProductID:   res.ID,
				ProductName: p.name,
				ProductURL:  p.url,
				At:          time.Now(),
			})
		}
	}

	if err := s.states.PutBatch(ctx, fetched); err != nil {
		// La caché conserva los valores previos; el próximo ciclo reintenta.
		s.log.Error().Err(err).Msg("sweep active: escritura de caché falló")
	}

	for _, ev := range events {
		s.fanout.Notify(ctx, ev)
	}

	s.log.Info().
		Int("products", len(ids)).
		Int("fetched", len(fetched)).
		Int("events", len(events)).
		Msg("sweep active completado")
	return nil
}

type productInfo struct {
	name string
	url  string
}

// productInfo carga nombre y URL para armar alertas. Best-effort: ante un
// fallo de lectura las alertas salen con el id como nombre.
func (s *ActiveSweep) productInfo(ctx context.Context) map[string]productInfo {
	m := make(map[string]productInfo)
	list, err := s.products.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cargar productos para alertas")
		return m
	}
	for _, p := range list {
		m[p.ID] = productInfo{name: p.Name, url: p.ProductURL}
	}
	return m
}
