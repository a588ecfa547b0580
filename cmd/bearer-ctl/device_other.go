//go:build !linux

package main

import (
	"errors"
	"runtime"
)

func openDevice() (bleDevice, error) {
	return nil, errors.New("no BLE central support on " + runtime.GOOS)
}
