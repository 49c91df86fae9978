// Package scheduler dispara los barridos y el reporte diario en sus cadencias.
// Cada job corre con un lock propio no bloqueante: si el tick anterior sigue
// en vuelo, el nuevo tick se omite en lugar de encolarse.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/spiritwatch/pkg/logger"
)

// JobFunc es el cuerpo de un job programado.
type JobFunc func(ctx context.Context) error

type job struct {
	name string
	fn   JobFunc
	mu   sync.Mutex
}

// Scheduler administra jobs periódicos y un job diario a hora fija.
type Scheduler struct {
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*job
}

// New construye el scheduler. Los jobs viven hasta Stop o hasta que el ctx
// padre se cancele.
func New(parent context.Context, log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{log: log, ctx: ctx, cancel: cancel, now: time.Now, jobs: make(map[string]*job)}
}

func (s *Scheduler) register(j *job) {
	s.mu.Lock()
	s.jobs[j.name] = j
	s.mu.Unlock()
}

// Trigger dispara el job nombrado fuera de su cadencia, bajo el mismo lock de
// corrida: si ya está en vuelo, el disparo se omite. Devuelve false si el job
// no existe.
func (s *Scheduler) Trigger(name string) bool {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.spawn(j)
	return true
}

// spawn lanza una corrida rastreada por el WaitGroup; Stop espera a que
// termine.
func (s *Scheduler) spawn(j *job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.ctx, j)
	}()
}

// Every corre fn cada interval hasta que el scheduler se detenga. El primer
// disparo ocurre recién al cumplirse el primer intervalo.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) {
	j := &job{name: name, fn: fn}
	s.register(j)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.spawn(j)
			}
		}
	}()
	s.log.Info().Str("job", name).Dur("interval", interval).Msg("job periódico programado")
}

// Daily corre fn una vez al día a la hora local indicada.
func (s *Scheduler) Daily(name string, hour, minute int, fn JobFunc) {
	j := &job{name: name, fn: fn}
	s.register(j)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			wait := untilNext(s.now(), hour, minute)
			timer := time.NewTimer(wait)
			select {
			case <-s.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.spawn(j)
			}
		}
	}()
	s.log.Info().Str("job", name).Int("hour", hour).Int("minute", minute).Msg("job diario programado")
}

// Stop cancela los jobs y espera a que los que están en vuelo terminen.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// run ejecuta el job si no hay otra corrida en vuelo. El panic de un job se
// recupera y se loguea; el cronograma sigue.
func (s *Scheduler) run(ctx context.Context, j *job) {
	if !j.mu.TryLock() {
		s.log.Warn().Str("job", j.name).Msg("corrida anterior en vuelo, tick omitido")
		return
	}
	defer j.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("job", j.name).Interface("panic", r).Msg("panic recuperado en job")
		}
	}()

	start := s.now()
	if err := j.fn(ctx); err != nil {
		s.log.Error().Err(err).Str("job", j.name).Msg("job terminó con error")
		return
	}
	s.log.Debug().Str("job", j.name).Dur("took", s.now().Sub(start)).Msg("job completado")
}

// untilNext calcula la espera hasta la próxima ocurrencia de hh:mm local.
func untilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
