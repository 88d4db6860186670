package processor

import (
	"context"
	"fmt"
	"sync/atomic"

	"pricewatch/internal/app/pricewatch/service"

	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// Scheduler запускает проходы проверки цен по cron-расписанию и
// по ручному триггеру. В каждый момент выполняется не больше одного
// прохода: триггер, заставший проход в работе, пропускается
// (не ставится в очередь и не повторяется).
type Scheduler struct {
	cron    *cron.Cron
	monitor service.MonitorServiceInterface
	running atomic.Bool

	// Базовый контекст проходов; задается в Start. Ручные триггеры
	// не привязаны к контексту HTTP запроса - проход живет дольше него.
	baseCtx context.Context
}

// NewScheduler создает новый планировщик проверок цен
func NewScheduler(monitor service.MonitorServiceInterface) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		monitor: monitor,
		// До Start проходы идут на фоновом контексте, чтобы ручной
		// триггер до запуска планировщика не падал на nil контексте
		baseCtx: context.Background(),
	}
}

// Start регистрирует cron-задачу и запускает планировщик.
// Невалидное расписание - ошибка (фатальная для старта сервиса).
// Первый проход выполняется сразу, не дожидаясь первого тика.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	s.baseCtx = ctx

	_, err := s.cron.AddFunc(schedule, func() {
		s.tryStartSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("scheduler: started")

	s.tryStartSweep()

	return nil
}

// TriggerNow запрашивает внеочередной проход.
// Возвращает false, если проход уже выполняется - запрос пропущен.
func (s *Scheduler) TriggerNow() bool {
	return s.tryStartSweep()
}

// IsRunning сообщает, выполняется ли проход прямо сейчас
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Stop останавливает cron. Уже идущий проход дорабатывает до конца,
// новые проходы по расписанию больше не запускаются.
func (s *Scheduler) Stop() {
	logger.Info().Msg("scheduler: stopping")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("scheduler: stopped")
}

// Entries возвращает зарегистрированные cron-задачи
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// tryStartSweep атомарно переводит планировщик из Idle в Running и
// запускает проход в фоне. Два одновременных триггера не могут оба
// увидеть Idle: compare-and-swap пропускает только один.
func (s *Scheduler) tryStartSweep() bool {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn().Msg("scheduler: sweep trigger skipped, sweep already running")
		metrics.SweepsSkipped.Inc()
		return false
	}

	go func() {
		defer s.running.Store(false)

		if _, err := s.monitor.RunSweep(s.baseCtx); err != nil {
			// Неудавшийся проход не роняет планировщик -
			// возвращаемся в Idle и ждем следующего триггера
			logger.Error().Err(err).Msg("scheduler: sweep failed")
		}
	}()

	return true
}
