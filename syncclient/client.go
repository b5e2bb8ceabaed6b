package syncclient

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/utils"
)

type ConnState string

const (
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
)

// Config wires a client to one backend feed.
type Config struct {
	// FeedURL is the websocket endpoint (ws:// or wss://), token included.
	FeedURL string
	// Snapshotter heals gaps after reconnects.
	Snapshotter Snapshotter
	// Backoff is the fixed wait between reconnect attempts.
	Backoff time.Duration
	// SnapshotSize is how many recent orders a resync fetches.
	SnapshotSize int
}

// Client keeps a local ordered view of recent orders consistent with the
// store despite an unreliable feed connection. All view mutation happens in
// the run loop through the merge functions; consumers read copies via View()
// and watch Events() for merged changes.
type Client struct {
	cfg Config

	mu    sync.RWMutex
	state ConnState
	view  *orderView

	events chan Change

	// Merged changes queue here until the consumer takes them; a slow
	// consumer delays delivery but never loses a change.
	pendingMu sync.Mutex
	pending   []Change
	wake      chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func New(cfg Config) *Client {
	if cfg.Backoff <= 0 {
		cfg.Backoff = 3 * time.Second
	}
	if cfg.SnapshotSize <= 0 {
		cfg.SnapshotSize = 50
	}
	return &Client{
		cfg:    cfg,
		state:  StateDisconnected,
		view:   newOrderView(),
		events: make(chan Change, 64),
		wake:   make(chan struct{}, 1),
	}
}

// Start launches the subscription loop and the event dispatcher.
func (c *Client) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(2)
	go c.run(ctx)
	go c.dispatch(ctx)
}

// Close tears the subscription down deterministically: after it returns no
// event is delivered and the Events channel is closed.
func (c *Client) Close() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		close(c.events)
	})
}

// State reports the connection state.
func (c *Client) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// View returns a copy of the local order list, newest first.
func (c *Client) View() []models.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.snapshot()
}

// Events surfaces merged changes. Every change merged while the client is
// open is delivered exactly once, in merge order, however far behind the
// consumer falls.
func (c *Client) Events() <-chan Change {
	return c.events
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}

		c.setState(StateConnecting)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.FeedURL, nil)
		if err != nil {
			utils.ErrorLogger.Printf("sync: dial %s: %v", c.cfg.FeedURL, err)
			c.setState(StateDisconnected)
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		c.setState(StateConnected)

		// Subscribe first, resync second: events that land while the
		// snapshot is in flight overlap with it, and the idempotent merge
		// makes the overlap harmless. The other order would leave a gap.
		c.resync(ctx)

		c.readUntilClosed(ctx, conn)
		conn.Close()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return
		}
		if !c.sleep(ctx) {
			return
		}
	}
}

// readUntilClosed pumps feed messages into the merge until the connection
// errors or the context is cancelled.
func (c *Client) readUntilClosed(ctx context.Context, conn *websocket.Conn) {
	msgs := make(chan wireMessage)
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)
		for {
			var msg wireMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					utils.ErrorLogger.Printf("sync: read: %v", err)
				}
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// Unblock the reader, then wait for it so nothing merges after
			// teardown.
			conn.Close()
			<-readDone
			return
		case <-readDone:
			return
		case msg := <-msgs:
			c.apply(msg)
		}
	}
}

// resync repairs whatever the transport dropped while we were away. A failed
// snapshot is not fatal: the next reconnect retries it.
func (c *Client) resync(ctx context.Context) {
	if c.cfg.Snapshotter == nil {
		return
	}
	orders, err := c.cfg.Snapshotter.FetchRecent(ctx, c.cfg.SnapshotSize)
	if err != nil {
		utils.ErrorLogger.Printf("sync: snapshot fetch: %v", err)
		return
	}

	c.mu.Lock()
	var changes []Change
	for _, order := range orders {
		if change, applied := c.view.mergeOrder(order); applied {
			changes = append(changes, change)
		}
	}
	c.mu.Unlock()

	for _, change := range changes {
		c.emit(change)
	}
}

func (c *Client) apply(msg wireMessage) {
	c.mu.Lock()
	change, applied, err := c.view.applyWire(msg)
	c.mu.Unlock()

	if err != nil {
		utils.ErrorLogger.Printf("sync: decode %s event: %v", msg.Event, err)
		return
	}
	if applied {
		c.emit(change)
	}
}

func (c *Client) emit(change Change) {
	c.pendingMu.Lock()
	c.pending = append(c.pending, change)
	c.pendingMu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// dispatch moves queued changes onto the events channel. Dropping a change
// would permanently swallow its notification, since the idempotent merge
// makes every later redelivery a no-op; queueing keeps the run loop free and
// the changes intact until the consumer catches up.
func (c *Client) dispatch(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}

		for {
			c.pendingMu.Lock()
			if len(c.pending) == 0 {
				c.pendingMu.Unlock()
				break
			}
			change := c.pending[0]
			c.pending = c.pending[1:]
			c.pendingMu.Unlock()

			select {
			case c.events <- change:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *Client) sleep(ctx context.Context) bool {
	select {
	case <-time.After(c.cfg.Backoff):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) setState(state ConnState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
