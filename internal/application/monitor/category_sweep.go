package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/spiritwatch/internal/domain/entity"
	"github.com/jhoicas/spiritwatch/internal/domain/repository"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// CategorySweep monitorea la entrada de productos a la categoría objetivo
// (p.ej. whiskey-release). El conjunto completo de categorías se almacena
// siempre, esté o no involucrado el tag objetivo, para soportar nuevos tags
// sin cambiar el esquema.
type CategorySweep struct {
	products repository.ProductRepository
	sets     repository.CategoryRepository
	catalog  CatalogAPI
	fanout   *Fanout
	target   string
	poll     PollConfig
	log      *logger.Logger
}

// NewCategorySweep construye el sweep para la categoría objetivo dada.
func NewCategorySweep(
	products repository.ProductRepository,
	sets repository.CategoryRepository,
	catalog CatalogAPI,
	fanout *Fanout,
	target string,
	poll PollConfig,
	log *logger.Logger,
) *CategorySweep {
	return &CategorySweep{products: products, sets: sets, catalog: catalog, fanout: fanout, target: target, poll: poll, log: log}
}

// Run ejecuta un ciclo completo del sweep de categorías.
func (s *CategorySweep) Run(ctx context.Context) error {
	ids, err := s.products.ListIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	prev, err := s.sets.GetBatch(ctx, ids)
	if err != nil {
		return err
	}

	results := Poll(ctx, s.poll, ids, s.catalog.FetchCategories)

	names := s.productNames(ctx)
	fetched := make(map[string][]string, len(results))
	var events []*entity.Event

	for _, res := range results {
		if res.Err != nil {
			s.log.Debug().Err(res.Err).Str("product_id", res.ID).Msg("fetch categorías omitido")
			continue
		}
		fetched[res.ID] = res.Value

		prevSet, known := prev[res.ID]
		if ClassifyCategory(s.target, prevSet, known, res.Value) {
			name := names[res.ID]
			if name == "" {
				name = res.ID
			}
			events = append(events, &entity.Event{
				ID:          uuid.NewString(),
				Kind:        entity.EventCategoryEntered,
				ProductID:   res.ID,
				ProductName: name,
				Category:    s.target,
				At:          time.Now(),
			})
		}
	}

	if err := s.sets.PutBatch(ctx, fetched); err != nil {
		s.log.Error().Err(err).Msg("sweep categorías: escritura de caché falló")
	}

	for _, ev := range events {
		s.fanout.Notify(ctx, ev)
	}

	s.log.Info().
		Int("products", len(ids)).
		Int("fetched", len(fetched)).
		Int("events", len(events)).
		Msg("sweep categorías completado")
	return nil
}

func (s *CategorySweep) productNames(ctx context.Context) map[string]string {
	m := make(map[string]string)
	list, err := s.products.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cargar nombres de productos")
		return m
	}
	for _, p := range list {
		m[p.ID] = p.Name
	}
	return m
}
