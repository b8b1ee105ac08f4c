// Package websocket talks to the tablet and speech service over a websocket.
//
// Every call is a JSON request carrying an ID; the service answers each one
// with a response bearing the same ID. Exchanges can take as long as the user
// needs, so several requests may be in flight, but WithExchangeTimeout bounds
// how long a silent tablet can keep one waiting.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/gorilla/websocket"
)

// ErrClosed is returned for calls made after the connection went away.
var ErrClosed = errors.New("interaction connection closed")

// Request is sent to the interaction service.
type Request struct {
	ID     string `json:"id"`
	Op     string `json:"op"`
	Script string `json:"script,omitempty"`
	Text   string `json:"text,omitempty"`
	Icon   string `json:"icon,omitempty"`
	Lang   string `json:"lang,omitempty"`
}

// Response answers a Request.
type Response struct {
	ID      string `json:"id"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Timeout bool   `json:"timeout,omitempty"`
}

const (
	OpExchange = "exchange"
	OpSay      = "say"
	OpIcon     = "icon"
	OpLanguage = "language"
)

// Interaction implements ports.Interaction and ports.LanguageSetter.
type Interaction struct {
	conn   *websocket.Conn
	wsMu   sync.Mutex
	logger *slog.Logger
	seq    atomic.Uint64
	// exchangeTimeout bounds scripted exchanges; zero waits on ctx only.
	exchangeTimeout time.Duration

	mu      sync.Mutex
	pending map[string]chan Response
	closed  chan struct{}
	err     error
}

// Option configures an Interaction.
type Option func(*Interaction)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interaction) {
		i.logger = logger
	}
}

// WithExchangeTimeout makes scripted exchanges give up with
// ports.ErrInteractionTimeout when no answer arrives within d.
func WithExchangeTimeout(d time.Duration) Option {
	return func(i *Interaction) {
		i.exchangeTimeout = d
	}
}

// Dial connects to the interaction service at url (ws:// or wss://).
func Dial(ctx context.Context, url string, header http.Header, opts ...Option) (*Interaction, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to interaction service: %w", err)
	}
	return New(conn, opts...), nil
}

// New wraps an established connection and starts its read loop.
func New(conn *websocket.Conn, opts ...Option) *Interaction {
	i := &Interaction{
		conn:    conn,
		logger:  logging.NewNop(),
		pending: make(map[string]chan Response),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	go i.readLoop()
	return i
}

// RunScriptedExchange plays the script and waits for its categorical result.
func (i *Interaction) RunScriptedExchange(ctx context.Context, scriptID string) (string, error) {
	resp, err := i.call(ctx, Request{Op: OpExchange, Script: scriptID}, i.exchangeTimeout)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// Say speaks the text.
func (i *Interaction) Say(ctx context.Context, text string) error {
	_, err := i.call(ctx, Request{Op: OpSay, Text: text}, 0)
	return err
}

// ShowIcon displays an icon.
func (i *Interaction) ShowIcon(ctx context.Context, id string) error {
	_, err := i.call(ctx, Request{Op: OpIcon, Icon: id}, 0)
	return err
}

// SetLanguage switches the speech and dialogue language.
func (i *Interaction) SetLanguage(ctx context.Context, lang string) error {
	_, err := i.call(ctx, Request{Op: OpLanguage, Lang: lang}, 0)
	return err
}

// Close closes the connection. Pending calls fail with ErrClosed.
func (i *Interaction) Close() error {
	i.wsMu.Lock()
	_ = i.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	i.wsMu.Unlock()
	return i.conn.Close()
}

// call sends req and waits for its response. A positive wait gives up with
// ports.ErrInteractionTimeout.
func (i *Interaction) call(ctx context.Context, req Request, wait time.Duration) (Response, error) {
	req.ID = strconv.FormatUint(i.seq.Add(1), 10)
	ch := make(chan Response, 1)

	i.mu.Lock()
	if i.err != nil {
		i.mu.Unlock()
		return Response{}, i.err
	}
	i.pending[req.ID] = ch
	i.mu.Unlock()
	defer func() {
		i.mu.Lock()
		delete(i.pending, req.ID)
		i.mu.Unlock()
	}()

	i.wsMu.Lock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = i.conn.SetWriteDeadline(deadline)
	} else {
		_ = i.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	}
	err := i.conn.WriteJSON(req)
	i.wsMu.Unlock()
	if err != nil {
		return Response{}, fmt.Errorf("send %s: %w", req.Op, err)
	}

	var expired <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case resp := <-ch:
		switch {
		case resp.Timeout:
			return resp, ports.ErrInteractionTimeout
		case resp.Error != "":
			return resp, fmt.Errorf("%s failed: %s", req.Op, resp.Error)
		}
		return resp, nil
	case <-expired:
		i.logger.Warn("No answer from the tablet", "op", req.Op, "script", req.Script, "after", wait)
		return Response{}, ports.ErrInteractionTimeout
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-i.closed:
		return Response{}, i.closedErr()
	}
}

func (i *Interaction) readLoop() {
	defer close(i.closed)
	for {
		var resp Response
		if err := i.conn.ReadJSON(&resp); err != nil {
			i.mu.Lock()
			i.err = fmt.Errorf("%w: %v", ErrClosed, err)
			i.mu.Unlock()
			i.logger.Debug("Interaction read loop stopped", "err", err)
			return
		}

		i.mu.Lock()
		ch, ok := i.pending[resp.ID]
		i.mu.Unlock()
		if !ok {
			i.logger.Warn("Response for unknown request", "id", resp.ID)
			continue
		}
		ch <- resp
	}
}

func (i *Interaction) closedErr() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	return ErrClosed
}
