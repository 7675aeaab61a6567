package push

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/tubarr"
)

// DefaultReconnectDelay is the fixed wait between a close and the next dial.
const DefaultReconnectDelay = 5 * time.Second

const dialTimeout = 10 * time.Second

// State is the connection state of a Channel.
type State int

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

// Handler receives every recognized message. It runs on the read goroutine.
type Handler func(tubarr.PushMessage)

// Options configure a Channel.
type Options struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
	Log            zerolog.Logger
	// OnState is called after every state transition.
	OnState func(State)
}

// Channel keeps one WebSocket connection to the server and re-dispatches its
// frames as typed messages. It never buffers: a disconnected channel simply
// delivers nothing until it reconnects.
type Channel struct {
	url     string
	delay   time.Duration
	dialer  *websocket.Dialer
	log     zerolog.Logger
	handler Handler
	onState func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	timer    *time.Timer
	closed   bool
	attempts int
}

// New builds a Channel. Nothing is dialed until Start.
func New(opts Options, handler Handler) *Channel {
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: dialTimeout, Proxy: http.ProxyFromEnvironment}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		url:     strings.TrimSpace(opts.URL),
		delay:   delay,
		dialer:  dialer,
		log:     opts.Log,
		handler: handler,
		onState: opts.OnState,
		ctx:     ctx,
		cancel:  cancel,
		state:   Closed,
	}
}

// Start dials in the background.
func (c *Channel) Start() {
	go c.connect()
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns how many dials have been started.
func (c *Channel) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Close cancels any pending reconnect and closes the socket. The channel
// cannot be restarted.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.cancel()
	c.setState(Closed)
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return conn.Close()
}

func (c *Channel) connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()
	c.setState(Connecting)

	session := uuid.NewString()
	log := c.log.With().Str("session", session).Int("attempt", attempt).Logger()

	ctx, cancel := context.WithTimeout(c.ctx, dialTimeout)
	conn, resp, err := c.dialer.DialContext(ctx, c.url, http.Header{"X-Client-Session": {session}})
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		log.Warn().Err(err).Str("url", c.url).Msg("push connect failed")
		c.lost()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()
	c.setState(Open)
	log.Info().Str("url", c.url).Msg("push connected")

	go c.readLoop(conn, log)
}

func (c *Channel) readLoop(conn *websocket.Conn, log zerolog.Logger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.conn == conn
			if current {
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			if current {
				log.Info().Err(err).Msg("push disconnected")
				c.lost()
			}
			return
		}
		msg, ok := Decode(data)
		if !ok {
			log.Debug().Int("bytes", len(data)).Msg("push frame dropped")
			continue
		}
		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// lost moves to Closed and schedules exactly one reconnect.
func (c *Channel) lost() {
	c.setState(Closed)
	c.scheduleReconnect()
}

func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.connect)
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Decode parses one frame. Malformed frames and unknown types report false.
func Decode(data []byte) (tubarr.PushMessage, bool) {
	var msg tubarr.PushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return tubarr.PushMessage{}, false
	}
	switch msg.Type {
	case tubarr.PushQueueUpdate:
		if msg.Queue == nil {
			msg.Queue = []tubarr.QueueEntry{}
		}
		return msg, true
	case tubarr.PushChannelUpdate:
		return msg, true
	case tubarr.PushStatusUpdate:
		return msg, msg.Status != nil
	default:
		return tubarr.PushMessage{}, false
	}
}
