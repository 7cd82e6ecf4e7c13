package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikogura/job-tracker/pkg/api"
	"github.com/nikogura/job-tracker/pkg/config"
	"github.com/nikogura/job-tracker/pkg/events"
	"github.com/nikogura/job-tracker/pkg/llm"
	"github.com/nikogura/job-tracker/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listenAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job tracker HTTP API",
	Long: `Run the job tracker HTTP API.

Jobs and interview sessions are kept in MongoDB (or SQLite with store.driver: sqlite).
Missing job descriptions, interview questions and answer feedback are generated by the
configured LLM provider. Job changes are published to RabbitMQ when events.amqp_url is set.

Example:
  job-tracker serve
  job-tracker serve --addr :9000 --config ./config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	logger := newLogger()

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}

	err = cfg.RequireCredentials()
	if err != nil {
		logger.WithError(err).Error("LLM credentials missing")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	st, err = openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	var provider llm.Provider
	provider, err = llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	client := llm.NewClient(provider, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.Timeout, logger)
	defer client.Close()

	publisher := newPublisher(cfg.Events, logger)
	defer publisher.Close()

	server := api.New(st, llm.NewGenerator(client), publisher, logger, api.Options{
		Addr:            cfg.Server.Addr,
		AllowedOrigin:   cfg.Server.AllowedOrigin,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	logger.WithFields(logrus.Fields{
		"provider": cfg.LLM.Provider,
		"model":    client.Model(),
		"store":    cfg.Store.Driver,
	}).Info("Starting job tracker")

	err = server.Run(ctx)
	return err
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger logrus.FieldLogger) (st store.Store, err error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	st, err = store.Open(connectCtx, store.Options{
		Driver:     cfg.Driver,
		MongoURI:   cfg.MongoURI,
		Database:   cfg.Database,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		err = errors.Wrap(err, "failed to open store")
		logger.WithError(err).Error("Store unavailable")
		return st, err
	}

	logger.WithField("driver", cfg.Driver).Info("Connected to store")
	return st, err
}

func closeStore(st store.Store, logger logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := st.Close(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to close store")
	}
}

// newPublisher connects to RabbitMQ when configured. Connection failures disable events.
func newPublisher(cfg config.EventsConfig, logger logrus.FieldLogger) (publisher events.Publisher) {
	if cfg.AMQPURL == "" {
		publisher = events.NopPublisher{}
		return publisher
	}

	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.Queue, logger)
	if err != nil {
		logger.WithError(err).Warn("Job events disabled")
		publisher = events.NopPublisher{}
		return publisher
	}

	publisher = p
	return publisher
}
