package app

import (
	"context"
	"fmt"

	"taskalive/config"
	middle "taskalive/internals/middleware"
	"taskalive/internals/modules/account"
	"taskalive/internals/modules/alert"
	"taskalive/internals/modules/monitor"
	"taskalive/internals/modules/ping"
	"taskalive/internals/modules/retention"
	"taskalive/internals/modules/sweep"
	"taskalive/internals/security"
	"taskalive/pkg/httpclient"
	"taskalive/pkg/rabbitmq"
	"taskalive/pkg/redisstore"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type Container struct {
	DB          *pgxpool.Pool
	RedisClient *redisstore.Client
	Logger      *zerolog.Logger

	Scheduler *sweep.Scheduler
	Pruner    *retention.Pruner

	monitorHandler *monitor.Handler
	pingHandler    *ping.Handler
	sweepHandler   *sweep.Handler
	authMW         *middle.AuthMiddleware
	cronSecret     string

	amqpConn *amqp091.Connection
}

func NewContainer(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, logger *zerolog.Logger) (*Container, error) {

	redisClient, err := redisstore.New(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	amqpConn, err := amqp091.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	smsPublisher, err := rabbitmq.NewPublisher(amqpConn, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.SMSRouting)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq publisher: %w", err)
	}

	validate := validator.New()
	httpClient := httpclient.NewHttpClient()

	accountRepo := account.NewRepository(db)
	monitorRepo := monitor.NewRepository(db)
	pingRepo := ping.NewRepository(db)
	alertRepo := alert.NewRepository(db)

	monitorSvc := monitor.NewService(monitorRepo, accountRepo, redisClient, pingRepo, alertRepo, logger)
	pingSvc := ping.NewService(pingRepo, redisClient, cfg.Redis.TokenCacheTTL, logger)

	dispatcher := alert.NewDispatcher(
		alert.NewResendEmailSender(httpClient, cfg.Alert.ResendAPIKey, cfg.Alert.FromEmail),
		alert.NewHTTPWebhookSender(httpClient),
		alert.NewAMQPSMSSender(smsPublisher),
		accountRepo,
		cfg.Alert.AppURL,
		cfg.Alert.ChannelTimeout,
		logger,
	)

	engine := sweep.NewEngine(monitorRepo, alertRepo, dispatcher, logger)
	scheduler := sweep.NewScheduler(ctx, cfg.Sweep, engine, logger)
	pruner := retention.NewPruner(ctx, cfg.Retention, pingRepo, alertRepo, logger)

	tokenSvc := security.NewTokenService(cfg.Auth)
	authMW := middle.NewAuthMiddleware(tokenSvc)

	return &Container{
		DB:             db,
		RedisClient:    redisClient,
		Logger:         logger,
		Scheduler:      scheduler,
		Pruner:         pruner,
		monitorHandler: monitor.NewHandler(monitorSvc, validate),
		pingHandler:    ping.NewHandler(pingSvc),
		sweepHandler:   sweep.NewHandler(engine),
		authMW:         authMW,
		cronSecret:     cfg.Sweep.CronSecret,
		amqpConn:       amqpConn,
	}, nil
}

func (c *Container) Shutdown() error {
	if c.amqpConn != nil && !c.amqpConn.IsClosed() {
		if err := c.amqpConn.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("rabbitmq connection close failed")
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("redis client close failed")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	return nil
}
