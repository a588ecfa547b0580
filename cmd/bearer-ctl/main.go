// Command bearer-ctl connects to a Bluetooth mesh node over GATT and
// exchanges mesh PDUs interactively.
//
// It picks the Proxy profile when the node offers it and falls back to the
// Provisioning profile otherwise. Lost links are re-established with
// backoff unless disabled in the configuration.
//
// Usage:
//
//	bearer-ctl [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-peer string          Peer address (overrides peer.address)
//	-mtu int              Requested ATT MTU (overrides bearer.requested_mtu)
//	-log-level string     Log level: debug, info, warn, error
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-state string         State file remembering known peers (JSON)
//
// Examples:
//
//	# Connect to a node and open the prompt
//	bearer-ctl -peer C4:7F:51:00:00:01
//
//	# Use a config file and capture protocol events for bearer-log
//	bearer-ctl -config bearer.yaml -protocol-log session.blog
//
// Interactive Commands:
//
//	connect [address] - Connect and establish the bearer
//	send <hex>        - Send a PDU
//	status            - Show connection and session status
//	reset-cache       - Discard cached services at the next disconnect
//	rediscover        - Forget cached services and bind again
//	disconnect        - Close the link
//	peers             - List peers from the state file
//	forget <address>  - Remove a peer from the state file
//	quit              - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meshgatt/meshgatt-go/pkg/gatt"
	bearerlog "github.com/meshgatt/meshgatt-go/pkg/log"
	"github.com/meshgatt/meshgatt-go/pkg/persistence"
)

// bleDevice is the local adapter used to dial peers.
type bleDevice interface {
	gatt.Dialer
	Stop() error
}

var (
	configFile  = flag.String("config", "", "Configuration file path (YAML)")
	peerAddr    = flag.String("peer", "", "Peer address (overrides peer.address)")
	mtuFlag     = flag.Int("mtu", 0, "Requested ATT MTU (overrides bearer.requested_mtu)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	stateFile   = flag.String("state", "", "State file remembering known peers (JSON)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rl, err := NewReadline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(rl.Stderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	// Protocol events go to the debug log and, if requested, to a file.
	// Segments are only written to the file.
	console := bearerlog.NewSlogAdapter(logger)
	protocolLoggers := []bearerlog.Logger{bearerlog.LoggerFunc(func(e bearerlog.Event) {
		if e.Segment == nil {
			console.Log(e)
		}
	})}
	var fileLogger *bearerlog.FileLogger
	if cfg.Logging.ProtocolLog != "" {
		fileLogger, err = bearerlog.NewFileLogger(cfg.Logging.ProtocolLog)
		if err != nil {
			rl.Close()
			fmt.Fprintf(os.Stderr, "Error: failed to create protocol logger: %v\n", err)
			os.Exit(1)
		}
		protocolLoggers = append(protocolLoggers, fileLogger)
		logger.Info("protocol logging enabled", "path", cfg.Logging.ProtocolLog)
	}

	device, err := openDevice()
	if err != nil {
		rl.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cache := gatt.NewProfileCache()
	dial := func(ctx context.Context, addr string) (peerLink, error) {
		link, err := gatt.Dial(ctx, device, addr, gatt.WithProfileCache(cache), gatt.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	sessionConfig := cfg.SessionConfig()
	sessionConfig.Logger = logger
	sessionConfig.ProtocolLogger = bearerlog.NewMultiLogger(protocolLoggers...)

	ctrl := NewController(dial, sessionConfig, cfg.RetryConfig(), cfg.AutoReconnect(), logger)
	if cfg.State.File != "" {
		if err := ctrl.UseStateStore(persistence.NewStateStore(cfg.State.File)); err != nil {
			logger.Warn("failed to load state, peers will not be remembered", "path", cfg.State.File, "error", err)
		}
	}
	defer func() {
		ctrl.Close()
		if err := device.Stop(); err != nil {
			logger.Warn("failed to stop device", "error", err)
		}
		if fileLogger != nil {
			if dropped := fileLogger.Dropped(); dropped > 0 {
				logger.Warn("protocol events dropped", "count", dropped)
			}
			fileLogger.Close()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig)
			cancel()
			rl.Close()
		case <-ctx.Done():
		}
	}()

	shell := NewShell(rl, ctrl)
	if cfg.Peer.Address != "" {
		shell.cmdConnect(ctx, []string{cfg.Peer.Address})
	} else if last := ctrl.Peer(); last != "" {
		fmt.Fprintf(rl.Stdout(), "Last peer: %s (type 'connect' to reconnect)\n", last)
	}
	shell.Run(ctx, cancel)
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig() (*Config, error) {
	cfg := Default()
	if *configFile != "" {
		var err error
		if cfg, err = Load(*configFile); err != nil {
			return nil, err
		}
	}

	if *peerAddr != "" {
		cfg.Peer.Address = *peerAddr
	}
	if *mtuFlag != 0 {
		cfg.Bearer.RequestedMTU = *mtuFlag
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *protocolLog != "" {
		cfg.Logging.ProtocolLog = *protocolLog
	}
	if *stateFile != "" {
		cfg.State.File = *stateFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
