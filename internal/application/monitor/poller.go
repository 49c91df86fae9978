package monitor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result resultado de un fetch individual dentro de un sweep. Err != nil
// significa que el producto se omite del ciclo completo: ni clasificación ni
// escritura de caché.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// FetchFunc un fetch con timeout propio contra el catálogo remoto.
type FetchFunc[T any] func(ctx context.Context, id string) (T, error)

// PollConfig parámetros del poller por lotes.
type PollConfig struct {
	BatchSize int           // requests simultáneas por lote
	Delay     time.Duration // pausa entre lotes (se omite tras el último)
}

// Poll recorre ids en lotes consecutivos de BatchSize: dentro de un lote todos
// los fetch corren concurrentes (fan-out/fan-in, sin orden garantizado dentro
// del lote); entre lotes se espera Delay para respetar el rate limit implícito
// del proveedor. El tiempo de pared de un lote lo acota el timeout por llamada
// del fetch: una request colgada solo demora su propio lote.
func Poll[T any](ctx context.Context, cfg PollConfig, ids []string, fetch FetchFunc[T]) []Result[T] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	results := make([]Result[T], 0, len(ids))

	for start := 0; start < len(ids); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		chunkResults := make([]Result[T], len(chunk))
		g, gctx := errgroup.WithContext(ctx)
		for i, id := range chunk {
			i, id := i, id
			g.Go(func() error {
				value, err := fetch(gctx, id)
				chunkResults[i] = Result[T]{ID: id, Value: value, Err: err}
				return nil // un fetch fallido no aborta el lote
			})
		}
		_ = g.Wait()
		results = append(results, chunkResults...)

		if end < len(ids) && cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(cfg.Delay):
			}
		}
	}
	return results
}
