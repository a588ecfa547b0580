package gatt

import (
	"context"
	"fmt"

	"github.com/go-ble/ble"
)

// Dialer opens GATT connections. ble.Device implements it.
type Dialer interface {
	Dial(ctx context.Context, addr ble.Addr) (ble.Client, error)
}

// Dial connects to the peer at addr and wraps the connection in a Link.
func Dial(ctx context.Context, d Dialer, addr string, opts ...LinkOption) (*Link, error) {
	client, err := d.Dial(ctx, ble.NewAddr(addr))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewLink(client, opts...), nil
}
