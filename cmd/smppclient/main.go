// Command smppclient runs one asynchronous SMPP ESME session against an
// SMSC, reading its configuration from a YAML file and draining outbound
// jobs from an in-process memory broker until stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Ucell-first/smppclient/broker/memory"
	"github.com/Ucell-first/smppclient/client"
	"github.com/Ucell-first/smppclient/config"
	"github.com/Ucell-first/smppclient/logging"
	"github.com/Ucell-first/smppclient/metrics"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Exit codes: 0 normal shutdown, 2 configuration error, 1 unhandled
// runtime error.
const (
	exitOK   = 0
	exitConf = 2
	exitRun  = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string

	root := &cobra.Command{
		Use:     "smppclient",
		Short:   "Run an asynchronous SMPP ESME session",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context(), configPath)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&configPath, "client", "", "path to the client's YAML configuration file")
	_ = root.MarkFlagRequired("client")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		if _, ok := err.(*configError); ok {
			fmt.Fprintln(os.Stderr, err)
			return exitConf
		}
		fmt.Fprintln(os.Stderr, err)
		return exitRun
	}
	return exitOK
}

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func runClient(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return &configError{err}
	}

	logger := logging.New(os.Stdout, cfg.LogMetadata)
	m := metrics.New("smppclient")
	m.MustRegister(prometheus.DefaultRegisterer)

	c := client.New(cfg, client.Deps{
		Broker:  memory.New(1000),
		Logger:  logger,
		Metrics: m,
	})

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	logger.Info("starting", map[string]any{"client_id": cfg.ClientID, "smsc": cfg.SMSCHost})
	if err := c.Run(ctx); err != nil {
		logger.Error("exited_with_error", map[string]any{"client_id": cfg.ClientID}, err)
		return err
	}
	logger.Info("stopped", map[string]any{"client_id": cfg.ClientID})
	return nil
}
