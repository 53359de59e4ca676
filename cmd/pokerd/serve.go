package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/server"
)

// ServeCmd runs the poker server until interrupted
type ServeCmd struct {
	Config   string `short:"c" default:"pokerd.hcl" help:"Path to the HCL configuration file"`
	Addr     string `help:"Override the configured listen address (host:port)"`
	LogLevel string `help:"Override the configured log level"`
}

func (cmd *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		host, port, err := splitAddr(cmd.Addr)
		if err != nil {
			return err
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if cmd.LogLevel != "" {
		cfg.Server.LogLevel = cmd.LogLevel
	}

	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	srv, err := server.NewServer(cfg, nil, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return srv.Stop()
	})
	return g.Wait()
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}
