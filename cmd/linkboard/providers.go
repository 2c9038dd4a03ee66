package main

import (
	"context"
	nethttp "net/http"

	"linkboard/internal/apiclient"
	"linkboard/internal/config"
	"linkboard/internal/service"
	"linkboard/internal/session"
	"linkboard/internal/web"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var providerSet = wire.NewSet(
	newAPIClient,
	service.NewLinkService,
	service.NewDashboardService,
	newQRService,
	newCredentialStore,
	newSessionManager,
	newRateLimiter,
	newHandler,
	newRouter,
)

func newAPIClient(cfg *config.Config, logger *zap.Logger) (*apiclient.Client, error) {
	return apiclient.New(cfg.APIBaseURL, logger, apiclient.WithTimeout(cfg.HTTPClientTimeout))
}

// QR images are served by the backend next to the API
func newQRService(client *apiclient.Client) *service.QRService {
	return service.NewQRService(client.BaseURL())
}

// newCredentialStore keeps tokens in Redis when REDIS_ADDR is set, so they
// survive restarts and are shared between replicas. Otherwise they live in
// process memory.
func newCredentialStore(cfg *config.Config, logger *zap.Logger) (session.CredentialStore, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory token store")
		return session.NewMemoryStore(session.DefaultTokenTTL), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	logger.Info("using redis token store", zap.String("addr", cfg.RedisAddr))

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	return session.NewRedisStore(rdb, session.DefaultTokenTTL, logger), cleanup, nil
}

func newSessionManager(cfg *config.Config, store session.CredentialStore, links *service.LinkService, stats *service.DashboardService, logger *zap.Logger) *session.Manager {
	return session.NewManager(store, links, stats, session.Options{
		IdleTTL:     cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		ToastTTL:    cfg.ToastTTL,
		Secure:      cfg.SecureCookies(),
	}, logger)
}

func newRateLimiter(cfg *config.Config) *web.RateLimiter {
	return web.NewRateLimiter(cfg.RateLimit)
}

func newHandler(cfg *config.Config, sessions *session.Manager, links *service.LinkService, qr *service.QRService, logger *zap.Logger) (*web.Handler, error) {
	return web.NewHandler(sessions, links, qr, cfg.PublicOrigin, logger)
}

func newRouter(cfg *config.Config, handler *web.Handler, rl *web.RateLimiter, logger *zap.Logger) nethttp.Handler {
	return web.NewRouter(handler, logger, rl, web.RouterOptions{ReportPanics: cfg.SentryDSN != ""})
}

func newApp(
	cfg *config.Config,
	logger log.Logger,
	hs *http.Server,
	sessions *session.Manager,
	rl *web.RateLimiter,
) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{"api": cfg.APIBaseURL}),
		kratos.Logger(logger),
		kratos.Server(hs),
		kratos.BeforeStart(func(ctx context.Context) error {
			sessions.StartCleanup(cfg.SessionTTL / 2)
			return nil
		}),
		kratos.BeforeStop(func(ctx context.Context) error {
			sessions.Stop()
			rl.Stop()
			return nil
		}),
	)
}
