package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"storefront/internal/config"
	"storefront/internal/creator"
	"storefront/internal/simulation"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

var (
	errUnknownLoggerLevel = errors.New("unknown logger level")
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		printError(cli.ErrWriter, err)
		cli.OsExiter(exitFailure)
	}
}

// printError reports err unless the app has already printed it as an exit error.
func printError(w io.Writer, err error) {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return
	}

	fmt.Fprintln(w, err)
}

func newApp() *cli.App {
	var configPath string

	return &cli.App{
		Name:      "storefront",
		Usage:     "one producer and many consumers sharing a fixed-size shelf",
		ArgsUsage: "<buffer_size> <num_consumers> <max_items>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "load configuration from `FILE`",
				EnvVars:     []string{config.ConfigPathEnv},
				Destination: &configPath,
			},
			&cli.BoolFlag{
				Name:  "check-invariants",
				Usage: "panic as soon as the shelf bookkeeping is inconsistent",
				Action: func(*cli.Context, bool) error {
					return flag.Set("syncutil.check_invariants", "true")
				},
			},
		},
		// Negative numbers look like unknown flags to the parser.
		OnUsageError: func(c *cli.Context, err error, _ bool) error {
			return usageError(c, err)
		},
		Action: func(c *cli.Context) error {
			return run(c, configPath)
		},
	}
}

func run(c *cli.Context, configPath string) error {
	conf := config.Load(configPath)

	if err := conf.SimulationConfig.ApplyArgs(c.Args().Slice()); err != nil {
		return usageError(c, err)
	}

	logger := createLogger(&conf.LoggingConfig)
	defer func() {
		_ = logger.Sync()
	}()

	sim, err := creator.NewCreator(logger, conf).CreateSimulation(simulation.RandomSleeper{})
	if err != nil {
		logger.Fatal("Failed to create simulation", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	go shutdown(ctx, logger, cancel)

	report, err := sim.Run(ctx)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	for _, summary := range report.Summary() {
		logger.Info("consumer summary",
			zap.String("consumer", summary.Consumer),
			zap.Ints("items", summary.Items),
		)
	}

	return nil
}

func usageError(c *cli.Context, err error) error {
	return cli.Exit(fmt.Sprintf("%s\nusage: %s %s", err, c.App.Name, c.App.ArgsUsage), exitUsage)
}

func createLogger(conf *config.LoggingConfig) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel = zapcore.InfoLevel

	levelByName := map[string]zapcore.Level{
		"info":  zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}

	var found bool
	if zapLevel, found = levelByName[conf.Level]; !found {
		log.Fatal(errUnknownLoggerLevel)
	}

	if conf.Encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapLevel),
		DisableCaller:     true,
		DisableStacktrace: false,
		Encoding:          conf.Encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			conf.Output,
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid": os.Getpid(),
		},
		Development: false,
		Sampling:    nil,
	}

	return zap.Must(cfg.Build())
}

// shutdown collapses the remaining delays on SIGINT or SIGTERM. Items already
// promised are still produced and sold.
func shutdown(ctx context.Context, logger *zap.Logger, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logger.Info("closing the store, selling the rest without delays...")
		cancel()
	case <-ctx.Done():
	}
}
