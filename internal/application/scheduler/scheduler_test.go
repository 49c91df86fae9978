package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/spiritwatch/internal/application/scheduler"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

func TestEvery_DisparaPeriodicamente(t *testing.T) {
	s := scheduler.New(context.Background(), logger.Nop())
	defer s.Stop()

	var runs int64
	s.Every("tick", 20*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	time.Sleep(110 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(3))
}

// Una corrida lenta hace que los ticks siguientes se omitan en lugar de
// encolarse: nunca hay dos corridas del mismo job en vuelo.
func TestEvery_CorridaLentaOmiteTicks(t *testing.T) {
	s := scheduler.New(context.Background(), logger.Nop())
	defer s.Stop()

	var inFlight, peak, runs int64
	s.Every("slow", 10*time.Millisecond, func(context.Context) error {
		n := atomic.AddInt64(&inFlight, 1)
		if n > atomic.LoadInt64(&peak) {
			atomic.StoreInt64(&peak, n)
		}
		atomic.AddInt64(&runs, 1)
		time.Sleep(60 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil
	})

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&peak), "nunca dos corridas simultáneas")
	assert.LessOrEqual(t, atomic.LoadInt64(&runs), int64(4), "los ticks durante la corrida se omiten")
}

// Un panic en el job se recupera y el cronograma sigue corriendo.
func TestEvery_PanicNoDetieneElCronograma(t *testing.T) {
	s := scheduler.New(context.Background(), logger.Nop())
	defer s.Stop()

	var runs int64
	s.Every("panicky", 20*time.Millisecond, func(context.Context) error {
		if atomic.AddInt64(&runs, 1) == 1 {
			panic("algo explotó")
		}
		return nil
	})

	time.Sleep(110 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&runs), int64(2), "el job debe seguir tras el panic")
}

// Un job que devuelve error no afecta a los demás jobs.
func TestEvery_ErrorNoAfectaOtrosJobs(t *testing.T) {
	s := scheduler.New(context.Background(), logger.Nop())
	defer s.Stop()

	var healthy int64
	s.Every("broken", 20*time.Millisecond, func(context.Context) error {
		return errors.New("siempre falla")
	})
	s.Every("healthy", 20*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&healthy, 1)
		return nil
	})

	time.Sleep(110 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&healthy), int64(3))
}

func TestTrigger_DisparaFueraDeCadencia(t *testing.T) {
	s := scheduler.New(context.Background(), logger.Nop())

	var runs int64
	s.Every("on-demand", time.Hour, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	assert.True(t, s.Trigger("on-demand"))
	assert.False(t, s.Trigger("no-existe"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&runs))
	s.Stop()
}

func TestStop_EsperaLasCorridasEnVuelo(t *testing.T) {
	s := scheduler.New(context.Background(), logger.Nop())

	var finished int64
	s.Every("draining", 10*time.Millisecond, func(context.Context) error {
		time.Sleep(40 * time.Millisecond)
		atomic.AddInt64(&finished, 1)
		return nil
	})

	time.Sleep(25 * time.Millisecond) // deja arrancar una corrida
	s.Stop()
	assert.GreaterOrEqual(t, atomic.LoadInt64(&finished), int64(1), "Stop debe drenar la corrida en vuelo")
}
