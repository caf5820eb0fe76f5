package creator

import (
	"storefront/internal/config"
	"storefront/internal/exchange"
	"storefront/internal/simulation"

	"go.uber.org/zap"
)

type Creator struct {
	logger *zap.Logger
	conf   *config.AppConfig
}

func NewCreator(logger *zap.Logger, conf *config.AppConfig) *Creator {
	return &Creator{
		logger: logger,
		conf:   conf,
	}
}

func (c *Creator) CreateExchange() (*exchange.Exchange, error) {
	simConf := &c.conf.SimulationConfig

	return exchange.NewExchange(c.logger.Named("exchange"), simConf.Capacity, simConf.Quota)
}

func (c *Creator) CreateSimulation(sleeper simulation.Sleeper) (*simulation.Simulation, error) {
	ex, err := c.CreateExchange()
	if err != nil {
		return nil, err
	}

	return simulation.NewSimulation(c.logger, &c.conf.SimulationConfig, ex, sleeper)
}
