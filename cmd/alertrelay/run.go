package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/alert-relay/core/assets"
	"github.com/koscakluka/alert-relay/core/audio/miniaudio"
	"github.com/koscakluka/alert-relay/core/audio/portaudio"
	"github.com/koscakluka/alert-relay/core/channel"
	"github.com/koscakluka/alert-relay/core/media"
	"github.com/koscakluka/alert-relay/core/media/overlay"
	"github.com/koscakluka/alert-relay/core/relay"
	"github.com/koscakluka/alert-relay/internal/metrics"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	dialTimeout     = 10 * time.Second
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the panel and play alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd.Flags(), cfgPath)
			if err != nil {
				return err
			}

			shutdownLogging, err := setupLogging(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer shutdownLogging(context.Background())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, s)
		},
	}

	addSettingsFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, s settings) error {
	endpoint, err := s.endpoint()
	if err != nil {
		return err
	}
	options := s.options()

	source, err := assets.NewSource(s.Assets)
	if err != nil {
		return fmt.Errorf("invalid asset root: %w", err)
	}

	reg := metrics.NewRegistry()
	relayMetrics := metrics.NewRelayMetrics(reg)
	channelMetrics := metrics.NewChannelMetrics(reg)

	surface := overlay.NewServer(overlayOptions(source, s.Assets)...)
	defer surface.Close()

	player, closePlayer, err := newAudioPlayer(s, source, surface)
	if err != nil {
		return err
	}
	defer closePlayer()

	coordinator := relay.NewCoordinator(
		relay.WithOptions(options),
		relay.WithAudioPlayer(player),
		relay.WithSurface(surface),
		relay.WithAssetSource(source),
		relay.WithRecorder(relayMetrics),
		relay.WithPlaybackWatchdog(s.Watchdog),
	)

	socket := channel.NewSocket(endpoint,
		channel.WithDialer(&websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: dialTimeout,
		}),
		channel.WithHeader(s.dialHeader()),
		channel.WithReconnectInterval(s.ReconnectInterval),
		channel.WithReconnectCallback(channelMetrics.Reconnecting),
	)
	manager := channel.NewManager(socket, s.Token, coordinator.Deliver, channel.WithRecorder(channelMetrics))

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/", surface.Handler())
	server := &http.Server{
		Addr:              s.Listen,
		Handler:           otelhttp.NewHandler(mux, "alertrelay"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.InfoContext(ctx, "Starting alert relay",
		"endpoint", endpoint,
		"overlay", "http://"+s.Listen+"/",
		"audio.backend", s.AudioBackend,
		"options", options.Len(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return coordinator.Run(ctx) })
	g.Go(func() error { return manager.Run(ctx) })
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("overlay server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.InfoContext(context.WithoutCancel(ctx), "Alert relay stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// overlayOptions serves a local asset directory from the overlay server and
// points viewers straight at remote roots.
func overlayOptions(source assets.Source, root string) []overlay.ServerOption {
	if dir, ok := source.(*assets.Dir); ok {
		return []overlay.ServerOption{overlay.WithAssets(http.FileServer(http.Dir(dir.Root())))}
	}

	return []overlay.ServerOption{overlay.WithAssetBase(root)}
}

// newAudioPlayer returns the player for the configured backend. The browser
// overlay plays audio unless a local device is requested.
func newAudioPlayer(s settings, source assets.Source, surface *overlay.Server) (media.AudioPlayer, func(), error) {
	switch s.AudioBackend {
	case backendMiniaudio:
		player, err := miniaudio.NewPlayer(source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open miniaudio output: %w", err)
		}
		return player, player.Close, nil

	case backendPortaudio:
		player, err := portaudio.NewPlayer(source, s.PortaudioBuffer)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open PortAudio output: %w", err)
		}
		return player, player.Close, nil

	default:
		return surface, func() {}, nil
	}
}
