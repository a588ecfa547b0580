//go:build linux

package main

import (
	"fmt"

	"github.com/go-ble/ble/linux"
)

// openDevice opens the default HCI adapter.
func openDevice() (bleDevice, error) {
	d, err := linux.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("open HCI device: %w", err)
	}
	return d, nil
}
