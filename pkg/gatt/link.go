package gatt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-ble/ble"

	"github.com/meshgatt/meshgatt-go/pkg/bearer"
)

// ErrForeignCharacteristic indicates a characteristic that was not produced
// by this link's discovery.
var ErrForeignCharacteristic = errors.New("characteristic not from this link")

// Client is the subset of ble.Client used by Link.
type Client interface {
	Addr() ble.Addr
	DiscoverProfile(force bool) (*ble.Profile, error)
	ExchangeMTU(rxMTU int) (txMTU int, err error)
	Subscribe(c *ble.Characteristic, ind bool, h ble.NotificationHandler) error
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	CancelConnection() error
	Disconnected() <-chan struct{}
}

var _ Client = (ble.Client)(nil)

// Link implements bearer.Link over a connected go-ble client.
type Link struct {
	client Client
	addr   string
	cache  *ProfileCache
	logger *slog.Logger
}

// LinkOption configures a Link.
type LinkOption func(*Link)

// WithProfileCache reuses discovery results across connections.
func WithProfileCache(cache *ProfileCache) LinkOption {
	return func(l *Link) {
		l.cache = cache
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) LinkOption {
	return func(l *Link) {
		l.logger = logger
	}
}

// NewLink wraps a connected client.
func NewLink(client Client, opts ...LinkOption) *Link {
	l := &Link{
		client: client,
		addr:   client.Addr().String(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Addr returns the peer address.
func (l *Link) Addr() string {
	return l.addr
}

// DiscoverServices returns the peer's catalog, from the cache when possible.
func (l *Link) DiscoverServices(ctx context.Context) (bearer.Catalog, error) {
	if l.cache != nil {
		if p, err := l.cache.Load(l.addr); err == nil {
			l.debugLog("DiscoverServices: using cached profile", "peer", l.addr)
			return buildCatalog(p), nil
		}
	}

	p, err := call(ctx, func() (*ble.Profile, error) {
		return l.client.DiscoverProfile(true)
	})
	if err != nil {
		return nil, fmt.Errorf("discover profile: %w", err)
	}

	cat := buildCatalog(p)
	// Only profiles a session can bind to are worth keeping.
	if l.cache != nil {
		if _, err := bearer.SelectProfile(cat); err == nil {
			l.cache.Store(l.addr, p)
		}
	}
	l.debugLog("DiscoverServices: discovered", "peer", l.addr, "services", len(p.Services))
	return cat, nil
}

// ForgetProfile drops the cached discovery result for the peer so the next
// DiscoverServices reads the peer's database again.
func (l *Link) ForgetProfile() {
	if l.cache != nil {
		l.cache.Forget(l.addr)
	}
}

// RequestMTU runs the ATT MTU exchange.
func (l *Link) RequestMTU(ctx context.Context, mtu int) (int, error) {
	granted, err := call(ctx, func() (int, error) {
		return l.client.ExchangeMTU(mtu)
	})
	if err != nil {
		return 0, fmt.Errorf("exchange MTU: %w", err)
	}
	return granted, nil
}

// EnableNotifications subscribes to notifications on ch.
func (l *Link) EnableNotifications(ctx context.Context, ch bearer.Characteristic, fn func(data []byte)) error {
	c, err := bleCharacteristic(ch)
	if err != nil {
		return err
	}
	_, err = call(ctx, func() (struct{}, error) {
		return struct{}{}, l.client.Subscribe(c, false, func(data []byte) {
			fn(data)
		})
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", ch.UUID, err)
	}
	return nil
}

// WriteWithoutResponse writes data as an ATT Write Command.
func (l *Link) WriteWithoutResponse(ctx context.Context, ch bearer.Characteristic, data []byte) error {
	c, err := bleCharacteristic(ch)
	if err != nil {
		return err
	}
	_, err = call(ctx, func() (struct{}, error) {
		return struct{}{}, l.client.WriteCharacteristic(c, data, true)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", ch.UUID, err)
	}
	return nil
}

// Disconnected returns a channel closed when the link drops.
func (l *Link) Disconnected() <-chan struct{} {
	return l.client.Disconnected()
}

// Close disconnects from the peer.
func (l *Link) Close() error {
	return l.client.CancelConnection()
}

// Disconnecter receives the link-loss event.
// Implemented by bearer.Session.
type Disconnecter interface {
	HandleDisconnected() (clearCache bool)
}

// Watch blocks until the link drops or ctx is done. On link loss it resets
// d and, if d asks for it, forgets the cached profile of the peer.
func (l *Link) Watch(ctx context.Context, d Disconnecter) (clearCache bool, err error) {
	select {
	case <-l.client.Disconnected():
	case <-ctx.Done():
		return false, ctx.Err()
	}

	clearCache = d.HandleDisconnected()
	if clearCache && l.cache != nil {
		l.cache.Forget(l.addr)
	}
	l.debugLog("Watch: link lost", "peer", l.addr, "clear_cache", clearCache)
	return clearCache, nil
}

func (l *Link) debugLog(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func bleCharacteristic(ch bearer.Characteristic) (*ble.Characteristic, error) {
	c, ok := ch.Ref.(*ble.Characteristic)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: %s", ErrForeignCharacteristic, ch.UUID)
	}
	return c, nil
}

// call runs a blocking go-ble operation and returns early when ctx is done.
// The operation itself cannot be aborted and finishes in the background.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

var (
	_ bearer.Link  = (*Link)(nil)
	_ Disconnecter = (*bearer.Session)(nil)
)
