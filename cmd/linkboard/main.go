package main

import (
	"flag"
	"os"
	"time"

	"linkboard/internal/config"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "linkboard"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "optional config file, eg: -conf config.yaml")
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	flag.Parse()

	cfg, err := config.Load(flagconf)
	if err != nil {
		panic(err)
	}

	logger, err := newZapLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("service.id", id), zap.String("service.name", Name))

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
			Release:     Version,
		}); err != nil {
			logger.Fatal("failed to initialise sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	app, cleanup, err := wireApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer cleanup()

	logger.Info("starting linkboard",
		zap.String("addr", cfg.Addr()),
		zap.String("api", cfg.APIBaseURL),
		zap.String("origin", cfg.PublicOrigin),
	)

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		logger.Error("application stopped with error", zap.Error(err))
	}
}
