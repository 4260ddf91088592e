// spanindex gRPC Server
// Answers positional queries over labeled text spans
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/nainya/spanindex/internal/config"
	"github.com/nainya/spanindex/internal/logger"
	"github.com/nainya/spanindex/internal/metrics"
	"github.com/nainya/spanindex/internal/server"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:           "spanindex",
		Short:         "Positional label index server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC query server and the observability endpoints",
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spanindex %s\n", version)
		},
	}

	configPath  string
	port        int
	metricsPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "spanindex.yaml", "Path to the YAML configuration file")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "gRPC port (overrides config)")
	serveCmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "Observability HTTP port (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadUnvalidated(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.Server.MetricsPort = metricsPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitGlobalLogger(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})
	log := logger.GetGlobalLogger()
	log.LogServerStart(cfg.Server.Port, cfg.Server.MetricsPort)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	done := make(chan struct{})
	defer close(done)
	go m.RunUptime(15*time.Second, done)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	svc := server.NewServer(cfg, log, m)
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.Limits.MaxTextBytes+1<<20),
		grpc.UnaryInterceptor(server.GrpcMetricsInterceptor(m, log)),
	)
	svc.Register(grpcServer)

	// Register reflection service for grpcurl/grpcui
	reflection.Register(grpcServer)

	var ready atomic.Bool
	obs := server.NewObservabilityServer(cfg.Server.MetricsPort, reg, ready.Load, log)
	go func() {
		if err := obs.Start(); err != nil {
			log.Error("observability server stopped").Err(err).Send()
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.LogServerShutdown()
		ready.Store(false)
		svc.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := obs.Shutdown(ctx); err != nil {
			log.Warn("observability shutdown").Err(err).Send()
		}
		grpcServer.GracefulStop()
	}()

	ready.Store(true)
	log.LogServerReady(cfg.Server.Port)
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
