package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/ragsplit/internal/config"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:           "mcp-server",
		Short:         "MCP server exposing chunk search and document splitting",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("postgres-url", "", "Postgres connection URL")
	flags.String("ollama-url", "", "Ollama base URL")
	flags.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.Int("port", 8000, "HTTP port")
	flags.String("host", "0.0.0.0", "HTTP host")

	config.Init(root)
	for key, flag := range map[string]string{
		config.KeyPostgresURL: "postgres-url",
		config.KeyOllamaURL:   "ollama-url",
		config.KeyMCPHost:     "host",
		config.KeyMCPPort:     "port",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-server: %v\n", err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	log := logging.NewWithLevel(config.LogLevel())
	cfg, err := mcp.DefaultConfig(log)
	if err != nil {
		return err
	}
	srv := mcp.New(cfg)
	defer srv.Close()

	addr := net.JoinHostPort(config.MCPHost(), strconv.Itoa(config.MCPPort()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("MCP server listening", "addr", addr, "endpoint", mcp.EndpointPath)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
