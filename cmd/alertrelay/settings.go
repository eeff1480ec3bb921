package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/koscakluka/alert-relay/core/channel"
	"github.com/koscakluka/alert-relay/core/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	backendOverlay   = "overlay"
	backendMiniaudio = "miniaudio"
	backendPortaudio = "portaudio"
)

type settings struct {
	Endpoint          string            `mapstructure:"endpoint"`
	PageURL           string            `mapstructure:"page-url"`
	PanelPort         int               `mapstructure:"panel-port"`
	Token             string            `mapstructure:"token"`
	Query             string            `mapstructure:"query"`
	Options           map[string]string `mapstructure:"option"`
	Assets            string            `mapstructure:"assets"`
	AudioBackend      string            `mapstructure:"audio-backend"`
	PortaudioBuffer   int               `mapstructure:"portaudio-buffer"`
	Listen            string            `mapstructure:"listen"`
	Watchdog          time.Duration     `mapstructure:"watchdog"`
	ReconnectInterval time.Duration     `mapstructure:"reconnect-interval"`
}

func addSettingsFlags(flags *pflag.FlagSet) {
	flags.String("endpoint", "", "panel websocket url, overrides --page-url and --panel-port")
	flags.String("page-url", "", "url of the alert page, the socket lives on its host")
	flags.Int("panel-port", 0, "panel socket port on the page host")
	flags.String("token", "", "token sent in the authenticate handshake")
	flags.String("query", "", "launch options as a query string, e.g. allow-audio-hooks=true&gif-default-volume=0.5")
	flags.StringToString("option", nil, "launch option key=value, repeatable, wins over --query")
	flags.String("assets", ".", "asset root directory or http(s) base url")
	flags.String("audio-backend", backendOverlay, "where audio plays: overlay, miniaudio or portaudio")
	flags.Int("portaudio-buffer", 1024, "frames per PortAudio buffer")
	flags.String("listen", "127.0.0.1:8080", "address of the overlay and metrics server")
	flags.Duration("watchdog", 0, "release an alert that has not finished after this long, 0 waits forever")
	flags.Duration("reconnect-interval", channel.DefaultReconnectInterval, "delay between socket reconnect attempts")
}

// loadSettings layers defaults, the config file, ALERTRELAY_ env vars and
// flags, later ones winning.
func loadSettings(flags *pflag.FlagSet, configFile string) (settings, error) {
	v := viper.New()

	if err := v.BindPFlags(flags); err != nil {
		return settings{}, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix("ALERTRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "alertrelay"))
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return settings{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return s, s.validate()
}

func (s settings) validate() error {
	switch s.AudioBackend {
	case backendOverlay, backendMiniaudio, backendPortaudio:
	default:
		return fmt.Errorf("unknown audio backend %q", s.AudioBackend)
	}

	if s.Endpoint == "" && s.PageURL == "" {
		return errors.New("either --endpoint or --page-url is required")
	}
	if s.Endpoint == "" && s.PanelPort <= 0 {
		return errors.New("--panel-port is required with --page-url")
	}

	return nil
}

// options merges --query with the individual --option values.
func (s settings) options() config.Options {
	return config.ParseQuery(s.Query).Merge(config.New(s.Options))
}

// dialHeader presents the relay to the panel as the alert page would.
func (s settings) dialHeader() http.Header {
	if s.PageURL == "" {
		return nil
	}

	page, err := url.Parse(s.PageURL)
	if err != nil || page.Host == "" {
		return nil
	}

	header := http.Header{}
	header.Set("Origin", page.Scheme+"://"+page.Host)
	return header
}

func (s settings) endpoint() (string, error) {
	if s.Endpoint != "" {
		return s.Endpoint, nil
	}

	return channel.Endpoint(s.PageURL, s.PanelPort)
}
