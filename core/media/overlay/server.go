// Package overlay renders alerts in browser sources.
//
// A Server holds the connected viewers (typically an OBS browser source
// pointed at the overlay page) and drives them over a websocket. It
// implements both media.Surface and media.AudioPlayer: elements and clips
// are played by the browser, which reports back when a clip has ended.
package overlay

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/alert-relay/core/media"
)

const DefaultAssetBase = "/assets/"

var ErrNoViewers = errors.New("no overlay viewers connected")

//go:embed web
var webFiles embed.FS

type Server struct {
	assetBase string
	assets    http.Handler
	upgrader  websocket.Upgrader

	mu        sync.Mutex
	viewers   map[*websocket.Conn]*viewer
	visible   *command
	playbacks map[string]func()
}

type ServerOption func(*Server)

// WithAssetBase sets the URL prefix viewers load media from. It may be an
// absolute URL when assets live on another host.
func WithAssetBase(base string) ServerOption {
	return func(s *Server) {
		if base != "" {
			s.assetBase = base
		}
	}
}

// WithAssets serves handler under /assets/.
func WithAssets(handler http.Handler) ServerOption {
	return func(s *Server) { s.assets = handler }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		assetBase: DefaultAssetBase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// browser sources are served from arbitrary origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
		viewers:   map[*websocket.Conn]*viewer{},
		playbacks: map[string]func(){},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler serves the overlay page at /, the viewer websocket at /overlay and
// the assets, if any, under /assets/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	page, _ := fs.Sub(webFiles, "web")
	mux.Handle("GET /{$}", http.FileServerFS(page))
	mux.HandleFunc("GET /overlay", s.handleViewer)
	if s.assets != nil {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", s.assets))
	}

	return mux
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "Failed to upgrade overlay viewer", "error", err)
		return
	}

	s.register(r.Context(), conn)
	defer s.unregister(r.Context(), conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg report
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.DebugContext(r.Context(), "Ignoring malformed viewer message", "error", err)
			continue
		}
		if msg.Ended != "" {
			s.ended(msg.Ended)
		}
	}
}

func (s *Server) register(ctx context.Context, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := newViewer(conn)
	s.viewers[conn] = v

	// late viewers pick up whatever is on screen
	if s.visible != nil {
		replay := *s.visible
		replay.FadeMS = 0
		if data, err := json.Marshal(replay); err == nil {
			v.send(data)
		}
	}

	logger.InfoContext(ctx, "Overlay viewer connected", "viewers", len(s.viewers))
}

func (s *Server) unregister(ctx context.Context, conn *websocket.Conn) {
	s.mu.Lock()
	if v, ok := s.viewers[conn]; ok {
		v.stop()
		delete(s.viewers, conn)
	}

	var orphaned []func()
	if len(s.viewers) == 0 {
		for id, onEnded := range s.playbacks {
			orphaned = append(orphaned, onEnded)
			delete(s.playbacks, id)
		}
	}
	remaining := len(s.viewers)
	s.mu.Unlock()

	logger.InfoContext(ctx, "Overlay viewer disconnected", "viewers", remaining)

	// nobody is left to report these clips as ended
	for _, onEnded := range orphaned {
		onEnded()
	}
}

// Viewers returns the number of connected viewers.
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

// Ready reports whether a viewer is connected to render alerts.
func (s *Server) Ready() bool {
	return s.Viewers() > 0
}

// Close disconnects every viewer.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn, v := range s.viewers {
		v.stop()
		delete(s.viewers, conn)
	}
}

func (s *Server) Show(ctx context.Context, element media.Element, fadeIn time.Duration) error {
	cmd := command{
		Type:   commandShow,
		ID:     element.ID,
		Kind:   element.Kind,
		Src:    s.assetURL(element.Source),
		Style:  element.Style,
		FadeMS: fadeIn.Milliseconds(),
	}
	if element.Kind == media.ElementVideo {
		cmd.Volume = &element.Volume
	}

	return s.broadcast(ctx, cmd)
}

func (s *Server) FadeOut(ctx context.Context, id string, fadeOut time.Duration) error {
	return s.broadcast(ctx, command{Type: commandFadeOut, ID: id, FadeMS: fadeOut.Milliseconds()})
}

func (s *Server) Remove(ctx context.Context, id string) error {
	return s.broadcast(ctx, command{Type: commandRemove, ID: id})
}

// Play asks the viewers to play clip. onEnded runs when the first viewer
// reports the clip finished, or when the last viewer disconnects.
func (s *Server) Play(ctx context.Context, clip media.Clip, onEnded func()) (media.Playback, error) {
	volume := clip.Volume
	cmd := command{Type: commandPlay, ID: clip.ID, Src: s.assetURL(clip.Path), Volume: &volume}

	s.mu.Lock()
	s.playbacks[clip.ID] = onEnded
	s.mu.Unlock()

	if err := s.broadcast(ctx, cmd); err != nil {
		s.mu.Lock()
		delete(s.playbacks, clip.ID)
		s.mu.Unlock()
		return nil, err
	}

	return &playback{server: s, id: clip.ID}, nil
}

func (s *Server) ended(id string) {
	s.mu.Lock()
	onEnded, ok := s.playbacks[id]
	delete(s.playbacks, id)
	s.mu.Unlock()

	if ok {
		onEnded()
	}
}

func (s *Server) broadcast(ctx context.Context, cmd command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode overlay command: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Type {
	case commandShow:
		s.visible = &cmd
	case commandFadeOut, commandRemove:
		if s.visible != nil && s.visible.ID == cmd.ID {
			s.visible = nil
		}
	}

	if len(s.viewers) == 0 {
		return ErrNoViewers
	}

	for conn, v := range s.viewers {
		if !v.send(data) {
			logger.WarnContext(ctx, "Disconnecting slow overlay viewer")
			v.stop()
			delete(s.viewers, conn)
		}
	}

	return nil
}

func (s *Server) assetURL(name string) string {
	joined, err := url.JoinPath(s.assetBase, name)
	if err != nil {
		return s.assetBase + name
	}
	return joined
}

type playback struct {
	server *Server
	id     string
}

// Pause stops the clip in every viewer. The clip no longer reports its end.
func (p *playback) Pause() {
	p.server.mu.Lock()
	delete(p.server.playbacks, p.id)
	p.server.mu.Unlock()

	p.control(commandPause)
}

func (p *playback) Rewind() {
	p.control(commandRewind)
}

func (p *playback) control(kind commandType) {
	ctx := context.Background()
	if err := p.server.broadcast(ctx, command{Type: kind, ID: p.id}); err != nil && !errors.Is(err, ErrNoViewers) {
		logger.WarnContext(ctx, "Failed to control overlay audio", "audio.id", p.id, "error", err)
	}
}
