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
	"strconv"
	"syscall"

	"github.com/nstehr/relic/relic-core/agent"
	"github.com/nstehr/relic/relic-core/config"
	"github.com/nstehr/relic/relic-core/ipc"
)

const banner = `
██████╗ ███████╗██╗     ██╗ ██████╗
██╔══██╗██╔════╝██║     ██║██╔════╝
██████╔╝█████╗  ██║     ██║██║
██╔══██╗██╔══╝  ██║     ██║██║
██║  ██║███████╗███████╗██║╚██████╗
╚═╝  ╚═╝╚══════╝╚══════╝╚═╝ ╚═════╝

Rule-Driven Relic Seeking`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	transport := flag.String("transport", "", "stdio, unix or ws")
	socketPath := flag.String("socket", "", "unix socket path")
	wsURL := flag.String("ws-url", "", "websocket host to dial")
	strategy := flag.String("strategy", "", "relic, balanced, enemy or explore")
	seed := flag.String("seed", "", "random seed")
	replayDir := flag.String("replay-dir", "", "directory for compressed replays")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	logFile := flag.String("log-file", "", "write logs here instead of stderr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Flags win over file and environment, but only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Transport = *transport
		case "socket":
			cfg.SocketPath = *socketPath
		case "ws-url":
			cfg.WSURL = *wsURL
		case "strategy":
			cfg.Strategy.Name = *strategy
		case "seed":
			n, perr := strconv.ParseInt(*seed, 10, 64)
			if perr != nil {
				err = errors.Join(err, fmt.Errorf("invalid -seed %q", *seed))
			}
			cfg.Seed = n
		case "replay-dir":
			cfg.ReplayDir = *replayDir
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-file":
			cfg.Log.File = *logFile
		}
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, closer, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	// Stdout belongs to the host in stdio mode.
	if cfg.Transport != config.TransportStdio {
		fmt.Println(banner)
	}

	opts := agent.Options{
		Strategy:  cfg.RuleStrategy(),
		Seed:      cfg.Seed,
		ReplayDir: cfg.ReplayDir,
	}
	slog.Info("starting relic agent", "transport", cfg.Transport, "strategy", opts.Strategy.Name, "seed", opts.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Transport {
	case config.TransportStdio:
		serve(ipc.NewLineTransport(os.Stdin, os.Stdout), opts)
	case config.TransportWebSocket:
		t, err := ipc.DialWebSocket(ctx, cfg.WSURL)
		if err != nil {
			slog.Error("failed to dial host", "url", cfg.WSURL, "error", err)
			os.Exit(1)
		}
		slog.Info("connected to host", "url", cfg.WSURL)
		go func() {
			<-ctx.Done()
			t.Close()
		}()
		serve(t, opts)
	case config.TransportUnix:
		if err := listenUnix(ctx, cfg.SocketPath, opts); err != nil {
			slog.Error("socket listener failed", "path", cfg.SocketPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("shutting down")
}

func listenUnix(ctx context.Context, socketPath string, opts agent.Options) error {
	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket: %w", err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go serve(ipc.NewStreamTransport(conn), opts)
		}
	}()

	<-ctx.Done()
	return nil
}

// serve runs one session to completion. Every connection gets its own agent,
// memory and random stream.
func serve(t ipc.Transport, opts agent.Options) {
	conn := ipc.NewConnection(t, nil)
	s := agent.NewSession(conn, opts)
	s.Register()
	conn.ReadLoop()
	if err := s.Close(); err != nil {
		slog.Warn("failed to close session", "player", conn.Player, "error", err)
	}
}
