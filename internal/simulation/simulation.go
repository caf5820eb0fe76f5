package simulation

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/config"
	"storefront/internal/exchange"

	"github.com/jacobsa/syncutil"
	"go.uber.org/zap"
)

type Simulation struct {
	logger   *zap.Logger
	conf     *config.SimulationConfig
	exchange *exchange.Exchange
	sleeper  Sleeper
}

func NewSimulation(
	logger *zap.Logger,
	conf *config.SimulationConfig,
	ex *exchange.Exchange,
	sleeper Sleeper,
) (*Simulation, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if conf == nil {
		return nil, errors.New("config cannot be nil")
	}
	if ex == nil {
		return nil, errors.New("exchange cannot be nil")
	}
	if sleeper == nil {
		sleeper = NoSleep{}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if conf.Quota != ex.Quota() || conf.Capacity != ex.Capacity() {
		return nil, fmt.Errorf(
			"exchange (capacity %d, quota %d) does not match config (capacity %d, quota %d)",
			ex.Capacity(), ex.Quota(), conf.Capacity, conf.Quota,
		)
	}

	return &Simulation{
		logger:   logger,
		conf:     conf,
		exchange: ex,
		sleeper:  sleeper,
	}, nil
}

// Run starts one producer and the configured number of consumers and returns
// once all of them have finished. Cancelling ctx only skips the delays.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	s.logger.Info("store opens",
		zap.Int("items_to_produce", s.conf.Quota),
		zap.Int("shelf_size", s.conf.Capacity),
		zap.Int("consumers", s.conf.Consumers),
	)

	report := newReport()
	bundle := syncutil.NewBundle(ctx)

	bundle.Add(s.produce)

	for i := 1; i <= s.conf.Consumers; i++ {
		name := consumerName(i)
		bundle.Add(func(ctx context.Context) error {
			return s.consume(ctx, name, report)
		})
	}

	if err := bundle.Join(); err != nil {
		s.logger.Error("simulation failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("simulation complete", zap.Int("items_sold", report.Total()))

	return report, nil
}

func (s *Simulation) produce(ctx context.Context) error {
	for serial := 1; serial <= s.conf.Quota; serial++ {
		s.logger.Info("producer wants to put item on shelf", zap.Int("item", serial))

		if err := s.exchange.Put(serial); err != nil {
			return fmt.Errorf("cannot put item %d: %w", serial, err)
		}

		s.logger.Info("item put on shelf", zap.Int("item", serial))

		s.sleeper.Sleep(ctx, s.conf.ProducerMaxDelay)
	}

	s.logger.Info("producer has completed work for the day, waiting for consumers to buy up the rest")

	return nil
}

func (s *Simulation) consume(ctx context.Context, name string, report *Report) error {
	for {
		s.logger.Info("consumer wants to buy an item", zap.String("consumer", name))

		item, ok := s.exchange.Take()
		if !ok {
			s.logger.Info("consumer found nothing to buy, going home", zap.String("consumer", name))
			return nil
		}

		report.record(name, item)
		s.logger.Info("consumer bought item",
			zap.String("consumer", name),
			zap.Int("item", item),
		)

		s.sleeper.Sleep(ctx, s.conf.ConsumerMaxDelay)
	}
}

func consumerName(id int) string {
	return fmt.Sprintf("consumer-%d", id)
}
