package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	grpcdelivery "github.com/Xausdorf/paycrew/internal/delivery/grpc"
	httpdelivery "github.com/Xausdorf/paycrew/internal/delivery/http"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
	"github.com/Xausdorf/paycrew/internal/infrastructure/config"
	"github.com/Xausdorf/paycrew/internal/infrastructure/metrics"
	"github.com/Xausdorf/paycrew/internal/infrastructure/payman"
	"github.com/Xausdorf/paycrew/internal/infrastructure/postgres"
	"github.com/Xausdorf/paycrew/internal/infrastructure/qrgenerator"
	"github.com/Xausdorf/paycrew/internal/infrastructure/queue"
	"github.com/Xausdorf/paycrew/internal/infrastructure/sandbox"
	"github.com/Xausdorf/paycrew/internal/usecase/balance"
	"github.com/Xausdorf/paycrew/internal/usecase/checkout"
	"github.com/Xausdorf/paycrew/internal/usecase/dispatch"
	"github.com/Xausdorf/paycrew/internal/usecase/mockdata"
	"github.com/Xausdorf/paycrew/internal/usecase/payee"
	"github.com/Xausdorf/paycrew/internal/usecase/payout"
	"github.com/Xausdorf/paycrew/internal/usecase/transfer"
	"github.com/Xausdorf/paycrew/internal/usecase/workflow"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		logger.Error("database init failed", "error", err)
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Error("migration failed", "error", err)
		return err
	}

	client, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	observer := metrics.NewObserver()
	registry.MustRegister(
		observer,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	generator := mockdata.NewGenerator(nil)
	if cfg.Workflow.Seed != 0 {
		generator = mockdata.NewSeededGenerator(cfg.Workflow.Seed)
	}
	engine := workflow.NewEngine(
		generator,
		payee.NewResolver(client, payee.WithLogger(logger), payee.WithCurrency(cfg.Workflow.Currency)),
		balance.NewVerifier(client, cfg.Workflow.CustomerID, cfg.Workflow.Currency),
		payout.NewExecutor(client, cfg.Workflow.CustomerID, cfg.Workflow.Currency),
		workflow.WithLogger(logger),
		workflow.WithStepTimeout(cfg.Workflow.StepTimeout),
		workflow.WithObserver(observer),
	)

	q, err := queue.New(ctx, queue.Config{
		Driver:        queue.Driver(cfg.Queue.Driver),
		Name:          cfg.Queue.Name,
		Size:          cfg.Queue.Size,
		RedisAddr:     cfg.Queue.RedisAddr,
		RedisPassword: cfg.Queue.RedisPassword,
		RedisDB:       cfg.Queue.RedisDB,
		BlockWait:     cfg.Queue.BlockWait,
		AMQPURL:       cfg.Queue.AMQPURL,
		Prefetch:      cfg.Queue.Prefetch,
	})
	if err != nil {
		logger.Error("queue init failed", "error", err)
		return err
	}
	defer q.Close()

	transferUC := transfer.NewUseCase(postgres.NewUnitOfWork(pool), engine,
		transfer.WithPublisher(dispatch.NewPublisher(q)),
		transfer.WithLogger(logger),
	)
	checkoutUC := checkout.NewUseCase(client, qrgenerator.NewGenerator(cfg.Server.QRSize),
		checkout.WithCurrency(cfg.Workflow.Currency),
		checkout.WithLogger(logger),
	)
	balances := balance.NewVerifier(client, "", cfg.Workflow.Currency)

	worker := dispatch.NewWorker(transferUC, q,
		dispatch.WithWorkers(cfg.Queue.Workers),
		dispatch.WithRunTimeout(cfg.Workflow.RunTimeout),
		dispatch.WithLogger(logger),
	)

	handler := httpdelivery.NewHandler(transferUC, checkoutUC, balances)
	router := httpdelivery.NewRouter(handler, metrics.Handler(registry, logger))
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	health := grpcdelivery.NewHealth(pool,
		grpcdelivery.WithInterval(cfg.Database.PingInterval),
		grpcdelivery.WithLogger(logger),
	)
	grpcSrv := grpcdelivery.NewServer(health)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen failed", "error", err)
		return err
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		health.Watch(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := worker.Start(ctx); err != nil {
			logger.Error("dispatch worker stopped", "error", err)
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		logger.Info("HTTP server starting", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		logger.Info("gRPC server starting", "addr", cfg.Server.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("grpc serve failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	health.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcSrv.GracefulStop()
	wg.Wait()
	return nil
}

func newProvider(cfg *config.Config, logger *slog.Logger) (provider.Client, error) {
	if cfg.Provider.Driver == config.ProviderPayman {
		return payman.New(payman.Config{
			BaseURL:   cfg.Provider.BaseURL,
			APISecret: cfg.Provider.APISecret,
			Timeout:   cfg.Provider.Timeout,
			Retries:   cfg.Provider.Retries,
			Backoff:   cfg.Provider.Backoff,
			Logger:    logger,
		})
	}

	opening, err := cfg.Sandbox.Balance()
	if err != nil {
		return nil, err
	}
	opts := []sandbox.Option{
		sandbox.WithBalance(opening),
		sandbox.WithCheckoutBaseURL(cfg.Sandbox.CheckoutBaseURL),
	}
	if cfg.Workflow.CustomerID != "" {
		opts = append(opts, sandbox.WithCustomerBalance(cfg.Workflow.CustomerID, opening))
	}
	logger.Warn("using the in-memory sandbox provider, no real money moves")
	return sandbox.New(opts...), nil
}
