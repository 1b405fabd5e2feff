package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"chain-swap/pkg/types"
)

// DefaultInterval is the cadence at which order status is refreshed.
const DefaultInterval = 10 * time.Second

// OrderDetailsGetter is the slice of the trade-service client the poller
// needs.
type OrderDetailsGetter interface {
	GetOrderDetails(ctx context.Context, req *types.GetOrderDetailsRequest) (*types.OrderDetails, error)
}

// UpdateFunc receives every successfully fetched order status.
type UpdateFunc func(details *types.OrderDetails)

// IsTerminalStatus reports whether an order status code ends polling:
// settled ("2"), refunded ("4") or expired ("-1").
func IsTerminalStatus(status string) bool {
	switch status {
	case types.OrderStatusSettled, types.OrderStatusRefunded, types.OrderStatusExpired:
		return true
	}
	return false
}

// Poller periodically fetches the details of one order until a terminal
// status is observed or it is stopped. At most one timer is active per
// poller: Start while running is a no-op and Stop is idempotent.
type Poller struct {
	svc      OrderDetailsGetter
	orderID  string
	caipID   string
	interval time.Duration
	onUpdate UpdateFunc
	log      *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the polling cadence.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) { p.interval = interval }
}

// WithUpdateFunc registers a callback for every fetched status.
func WithUpdateFunc(fn UpdateFunc) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// WithLogger sets the poller's logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Poller) { p.log = log }
}

// New creates a poller for one order.
func New(svc OrderDetailsGetter, orderID, caipID string, opts ...Option) *Poller {
	p := &Poller{
		svc:      svc,
		orderID:  orderID,
		caipID:   caipID,
		interval: DefaultInterval,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling: one immediate fetch, then one fetch per interval.
// Calling Start while already running does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopCh, p.done
	p.mu.Unlock()

	p.log.Info("order status polling started", zap.String("order_id", p.orderID))
	go p.run(ctx, stop, done)
}

// Stop ends polling and releases the timer. Safe to call repeatedly and
// safe to call while a fetch is in flight.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
	p.stopCh = nil
	p.log.Info("order status polling stopped", zap.String("order_id", p.orderID))
}

// Running reports whether a polling timer is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Done returns a channel closed when the polling loop exits, either by Stop
// or by reaching a terminal status. Returns nil before the first Start.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Refresh performs one immediate fetch outside the interval cadence. The
// running timer, if any, is not disturbed unless the fetched status is
// terminal.
func (p *Poller) Refresh(ctx context.Context) (*types.OrderDetails, error) {
	details, err := p.svc.GetOrderDetails(ctx, &types.GetOrderDetailsRequest{
		OrderID: p.orderID,
		CaipID:  p.caipID,
	})
	if err != nil {
		return nil, err
	}
	if p.onUpdate != nil {
		p.onUpdate(details)
	}
	if IsTerminalStatus(details.Status) {
		p.Stop()
	}
	return details, nil
}

func (p *Poller) run(ctx context.Context, stop chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if p.fetch(ctx) {
		p.stopFrom(stop)
		return
	}

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			p.stopFrom(stop)
			return
		case <-ticker.C:
			if p.fetch(ctx) {
				p.stopFrom(stop)
				return
			}
		}
	}
}

// stopFrom ends polling from inside the loop. It only acts if the loop's
// stop channel is still the current one, so a Stop/Start pair racing the
// loop cannot tear down the wrong generation.
func (p *Poller) stopFrom(stop chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.stopCh != stop {
		return
	}
	p.running = false
	close(p.stopCh)
	p.stopCh = nil
	p.log.Info("order status polling stopped", zap.String("order_id", p.orderID))
}

// fetch performs one status fetch and reports whether a terminal status was
// observed. Fetch errors keep polling: the backend stays authoritative and
// the next tick retries.
func (p *Poller) fetch(ctx context.Context) (terminal bool) {
	details, err := p.svc.GetOrderDetails(ctx, &types.GetOrderDetailsRequest{
		OrderID: p.orderID,
		CaipID:  p.caipID,
	})
	if err != nil {
		p.log.Warn("order status fetch failed", zap.String("order_id", p.orderID), zap.Error(err))
		return false
	}

	p.log.Debug("order status", zap.String("order_id", p.orderID), zap.String("status", details.Status))
	if p.onUpdate != nil {
		p.onUpdate(details)
	}
	return IsTerminalStatus(details.Status)
}
