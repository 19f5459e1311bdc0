package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/config"
	"github.com/zlc_ai/channelio-bridge/internal/logging"
	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/platform/android"
	"github.com/zlc_ai/channelio-bridge/internal/platform/ios"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
	"github.com/zlc_ai/channelio-bridge/internal/push"
	"github.com/zlc_ai/channelio-bridge/internal/sandbox"
	"github.com/zlc_ai/channelio-bridge/internal/transport"
	"github.com/zlc_ai/channelio-bridge/internal/webhook"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge host",
	Long: `Starts the UI loop, attaches the configured platform bridge to the method
channel and serves it over WebSocket and HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err := logging.New(cfg.Observability.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("Starting Channel.io bridge",
			zap.String("version", version),
			zap.String("config", configPath),
			zap.String("platform", cfg.Bridge.Platform))

		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd)
}

// host is one platform binding attached to a channel.
type host struct {
	bridge   bridge.Bridge
	receiver push.Receiver
	wait     func()
}

func newHost(cfg *config.Config, loop *mainloop.Loop, channel *bridge.MethodChannel, logger *zap.Logger) (*host, error) {
	opts := sandbox.Options{
		BootDelay:    cfg.Sandbox.BootDelay,
		Unread:       cfg.Sandbox.Unread,
		Alert:        cfg.Sandbox.Alert,
		RejectedKeys: cfg.Sandbox.RejectedKeys,
	}

	switch cfg.Bridge.Platform {
	case config.PlatformAndroid:
		sdk := sandbox.NewAndroid(opts, logger)
		return &host{
			bridge:   android.NewManager(sdk, loop, channel, logger),
			receiver: android.PushReceiver{SDK: sdk},
			wait:     sdk.Wait,
		}, nil
	case config.PlatformIOS:
		sdk := sandbox.NewIOS(opts, logger)
		return &host{
			bridge:   ios.NewManager(sdk, loop, channel, logger),
			receiver: ios.PushReceiver{SDK: sdk},
			wait:     sdk.Wait,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", cfg.Bridge.Platform)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	loop := mainloop.New(logger)
	channel := bridge.NewMethodChannel(cfg.Bridge.ChannelName, loop, logger)

	h, err := newHost(cfg, loop, channel, logger)
	if err != nil {
		return err
	}
	channel.SetMethodCallHandler(h.bridge)

	wsServer := transport.NewWebSocketServer(channel, logger)
	pollingServer := transport.NewPollingServer(channel, cfg.Events.LogSize, cfg.Server.WriteTimeout, logger)
	transports := []transport.Transport{wsServer, pollingServer}
	if cfg.Webhook.URL != "" {
		transports = append(transports, webhook.NewForwarder(webhook.Config{
			URL:        cfg.Webhook.URL,
			AuthHeader: cfg.Webhook.AuthHeader,
			Timeout:    cfg.Webhook.Timeout,
			RetryCount: cfg.Webhook.RetryCount,
			QueueSize:  cfg.Webhook.QueueSize,
		}, channel.Name(), logger))
	}
	detach := transport.Attach(channel, transports...)
	defer detach()

	routes := transport.DefaultRoutes()
	routes.WebSocketPath = cfg.Server.WebSocketPath
	routes.Version = version
	if cfg.Push.Enabled {
		routes.Push = push.NewIngestor(h.receiver, logFallback(logger), logger)
		routes.PushPath = cfg.Push.Path
		routes.TokenPath = cfg.Push.TokenPath
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      transport.NewMux(routes, wsServer, pollingServer, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(gctx)
	})

	g.Go(func() error {
		select {
		case <-loop.Started():
		case <-gctx.Done():
			return nil
		}
		for _, t := range transports {
			if err := t.Start(gctx); err != nil {
				return fmt.Errorf("start transport: %w", err)
			}
		}
		if cfg.Bridge.DebugMode {
			enableDebug(gctx, channel, logger)
		}

		logger.Info("HTTP server starting", zap.String("addr", server.Addr))
		printBanner(cfg)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		for _, t := range transports {
			if err := t.Stop(shutdownCtx); err != nil {
				logger.Error("Transport shutdown error", zap.Error(err))
			}
		}
		return nil
	})

	err = g.Wait()

	// The loop has stopped; nothing else can touch the listener now.
	h.bridge.Dispose()
	h.wait()

	logger.Info("Channel.io bridge stopped")
	return err
}

func enableDebug(ctx context.Context, channel *bridge.MethodChannel, logger *zap.Logger) {
	resp, err := channel.Invoke(ctx, protocol.Envelope{
		Method:    protocol.MethodSetDebugMode,
		Arguments: map[string]any{"flag": true},
	})
	if err != nil {
		logger.Warn("Failed to enable debug mode", zap.Error(err))
		return
	}
	if resp.Success != nil && !*resp.Success {
		logger.Warn("Debug mode refused", zap.String("code", resp.ErrorCode))
	}
}

// logFallback stands in for the host app's own messaging service.
func logFallback(logger *zap.Logger) push.Fallback {
	return push.FallbackFuncs{
		Message: func(msg push.Message) {
			logger.Info("Forwarded push to application", zap.String("messageId", msg.ID), zap.Int("keys", len(msg.Data)))
		},
		Token: func(token string) {
			logger.Info("Forwarded push token to application", zap.Int("length", len(token)))
		},
	}
}

func printBanner(cfg *config.Config) {
	banner := `
╔══════════════════════════════════════════════════════════════════╗
║                  Channel.io Bridge v%-8s                     ║
╠══════════════════════════════════════════════════════════════════╣
║  HTTP Server:    http://localhost:%-5d                          ║
║  Platform:       %-20s                          ║
║  Channel:        %-20s                          ║
║  Push:           %-20s                          ║
╠══════════════════════════════════════════════════════════════════╣
║  Endpoints:                                                      ║
║    WS   %-20s  - Method channel frames         ║
║    POST /api/v1/invoke              - Single call                ║
║    GET  /api/v1/events?since=N      - Event log                  ║
║    GET  /health                     - Health check               ║
╚══════════════════════════════════════════════════════════════════╝
`
	pushState := "disabled"
	if cfg.Push.Enabled {
		pushState = cfg.Push.Path
	}
	fmt.Fprintf(os.Stderr, banner,
		version,
		cfg.Server.HTTPPort,
		padRight(cfg.Bridge.Platform, 20),
		padRight(cfg.Bridge.ChannelName, 20),
		padRight(pushState, 20),
		padRight(cfg.Server.WebSocketPath, 20),
	)
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s[:length]
	}
	return s + strings.Repeat(" ", length-len(s))
}
