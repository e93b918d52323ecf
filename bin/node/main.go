package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/molalign8468/full-stack-nft-marketplace/node"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/deploy"
	"github.com/molalign8468/full-stack-nft-marketplace/node/gateway"
	nodegrpc "github.com/molalign8468/full-stack-nft-marketplace/node/grpc"
	"github.com/molalign8468/full-stack-nft-marketplace/node/stream"
	"github.com/molalign8468/full-stack-nft-marketplace/node/task"
)

type args struct {
	ConfigPath   string
	DatabasePath string
	ListenAddr   string
	GatewayAddr  string
	JSONLogs     bool
}

func loadArgs() *args {
	args := &args{}

	flag.StringVar(&args.ConfigPath, "config", "", "Path to the TOML config file")
	flag.StringVar(&args.DatabasePath, "database", "", "Database path, overrides the config file")
	flag.StringVar(&args.ListenAddr, "listen", "", "gRPC listen address, overrides the config file")
	flag.StringVar(&args.GatewayAddr, "gateway", "", "HTTP gateway address, overrides the config file")
	flag.BoolVar(&args.JSONLogs, "json-logs", false, "Log in JSON")
	flag.Parse()

	return args
}

func loadConfig(args *args) (*node.Config, error) {
	config := node.DefaultConfig()
	if args.ConfigPath != "" {
		var err error
		if config, err = node.LoadConfig(args.ConfigPath); err != nil {
			return nil, err
		}
	}
	if args.DatabasePath != "" {
		config.DatabasePath = args.DatabasePath
	}
	if args.ListenAddr != "" {
		config.ListenAddr = args.ListenAddr
	}
	if args.GatewayAddr != "" {
		config.GatewayAddr = args.GatewayAddr
	}
	return config, config.Validate()
}

func main() {
	args := loadArgs()

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{AddSource: true})
	if args.JSONLogs {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{AddSource: true})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	config, err := loadConfig(args)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, config, logger)
	stop()
	if err != nil {
		logger.Error("Node stopped", "error", err)
		os.Exit(1)
	}
}

// run serves the node until ctx is done or a server fails. Everything it opens is
// released before it returns.
func run(ctx context.Context, config *node.Config, logger *slog.Logger) error {
	engine, err := chain.Open(config.DatabaseDriver(), config.DatabaseSource(), chain.WithChainID(config.Network.ChainID()))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer engine.Close()

	deploy.Register(engine)
	if err := engine.Migrate(ctx); err != nil {
		return fmt.Errorf("failed creating schema resources: %w", err)
	}

	d, err := deploy.Bootstrap(ctx, engine, config.Deployer, config.CollectionParams(), config.Allocation())
	if err != nil {
		return fmt.Errorf("failed to deploy contracts: %w", err)
	}

	router := stream.NewEventRouter(stream.DefaultBufferSize)
	router.Attach(engine)

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	for _, t := range task.AllTasks(config) {
		_, err := s.NewJob(gocron.DurationJob(t.Duration), gocron.NewTask(t.Task, ctx, engine, d), gocron.WithName(t.Name))
		if err != nil {
			return fmt.Errorf("failed to create job %s: %w", t.Name, err)
		}
	}
	s.Start()
	defer func() {
		if err := s.Shutdown(); err != nil {
			logger.Error("Failed to stop scheduler", "error", err)
		}
	}()

	grpcServer, err := nodegrpc.NewServer(config, engine, d, router)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	lis, err := net.Listen("tcp", config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer grpcServer.Stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Serving gRPC", "address", lis.Addr().String(), "network", config.Network.String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		logger.Info("Serving gateway", "address", config.GatewayAddr)
		if err := gateway.New(engine, d, config.CORSOrigins, logger).Serve(ctx, config.GatewayAddr); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		return nil
	case err := <-errCh:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}
