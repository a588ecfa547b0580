package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/meshgatt/meshgatt-go/pkg/bearer"
	"github.com/meshgatt/meshgatt-go/pkg/connection"
)

// commandTimeout bounds connect, send and rediscover commands.
const commandTimeout = 30 * time.Second

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// Shell is the interactive bearer-ctl prompt.
type Shell struct {
	ctrl *Controller
	rl   *readline.Instance
	out  io.Writer
}

// NewReadline creates the readline instance shared by the shell and the
// log output.
func NewReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bearer> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

// NewShell creates a shell driving ctrl.
func NewShell(rl *readline.Instance, ctrl *Controller) *Shell {
	s := &Shell{ctrl: ctrl, rl: rl, out: rl.Stdout()}
	s.attach()
	return s
}

// attach registers the controller callbacks that print to the shell.
func (s *Shell) attach() {
	s.ctrl.OnPDUReceived(func(peer bearer.PeerID, pdu []byte) {
		fmt.Fprintf(s.out, "<- %s [%d bytes] %s\n", peer, len(pdu), hex.EncodeToString(pdu))
	})
	s.ctrl.OnPDUSent(func(peer bearer.PeerID, pdu []byte) {
		fmt.Fprintf(s.out, "-> %s [%d bytes]\n", peer, len(pdu))
	})
	s.ctrl.OnLinkLost(func(peer bearer.PeerID, clearCache bool) {
		fmt.Fprintf(s.out, "Link to %s lost (cache cleared: %t)\n", peer, clearCache)
	})
	s.ctrl.Manager().OnReconnecting(func(round int, delay time.Duration) {
		fmt.Fprintf(s.out, "Reconnecting (round %d) in %s\n", round, delay.Round(time.Millisecond))
	})
	s.ctrl.Manager().OnError(func(err error) {
		fmt.Fprintf(s.out, "Reconnect failed: %v\n", err)
	})
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if err := s.execute(ctx, line); errors.Is(err, errQuit) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// execute runs one command line.
func (s *Shell) execute(ctx context.Context, line string) error {
	input := strings.TrimSpace(line)
	if input == "" {
		return nil
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "connect", "c":
		s.cmdConnect(ctx, args)
	case "send", "s":
		s.cmdSend(ctx, args)
	case "status", "st":
		s.cmdStatus()
	case "reset-cache":
		s.cmdResetCache()
	case "rediscover":
		s.cmdRediscover(ctx)
	case "disconnect", "d":
		s.cmdDisconnect(ctx)
	case "peers":
		s.cmdPeers()
	case "forget":
		s.cmdForget(args)
	case "quit", "exit", "q":
		return errQuit
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return nil
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Mesh GATT Bearer Commands:
  Connection:
    connect [address]  - Connect to a mesh node and establish the bearer
    disconnect         - Close the link (no reconnect)
    rediscover         - Forget cached services and bind again
    reset-cache        - Discard cached services at the next disconnect

  Peers:
    peers              - List peers from the state file
    forget <address>   - Remove a peer from the state file

  Data:
    send <hex>         - Send a PDU, e.g. send 0300010203

  General:
    status             - Show connection and session status
    help               - Show this help
    quit               - Exit`)
}

func (s *Shell) cmdConnect(ctx context.Context, args []string) {
	addr := ""
	if len(args) > 0 {
		addr = args[0]
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := s.ctrl.Connect(ctx, addr); err != nil {
		switch {
		case errors.Is(err, errNoPeer):
			fmt.Fprintln(s.out, "Usage: connect <address>")
		case errors.Is(err, bearer.ErrUnsupportedPeer):
			fmt.Fprintf(s.out, "Peer is not a mesh node: %v\n", err)
		default:
			fmt.Fprintf(s.out, "Connect failed: %v\n", err)
		}
		return
	}
	s.cmdStatus()
}

func (s *Shell) cmdSend(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: send <hex>")
		fmt.Fprintln(s.out, "  Example: send 03 00 01 02 03")
		return
	}

	pdu, err := parseHex(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(s.out, "Invalid PDU: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := s.ctrl.Send(ctx, pdu); err != nil {
		fmt.Fprintf(s.out, "Send failed: %v\n", err)
	}
}

func (s *Shell) cmdStatus() {
	state, st := s.ctrl.Status()

	fmt.Fprintln(s.out, "\nBearer Status")
	fmt.Fprintln(s.out, "-------------------------------------------")
	fmt.Fprintf(s.out, "  Connection:     %s\n", state)
	if st == nil {
		return
	}
	fmt.Fprintf(s.out, "  Peer:           %s\n", st.Peer)
	fmt.Fprintf(s.out, "  Connection ID:  %s\n", st.ConnectionID)
	fmt.Fprintf(s.out, "  Session:        %s\n", st.State)
	fmt.Fprintf(s.out, "  Profile:        %s\n", st.Profile)
	fmt.Fprintf(s.out, "  MTU:            %d (packet size %d)\n", st.MTU, st.PacketSize)
	fmt.Fprintf(s.out, "  Ready:          %t\n", st.Ready)
	fmt.Fprintf(s.out, "  Provisioned:    %t\n", st.ProvisioningComplete())
	if st.PendingCacheClear {
		fmt.Fprintln(s.out, "  Cache:          clear on disconnect")
	}
}

func (s *Shell) cmdResetCache() {
	if err := s.ctrl.RequireCacheClear(); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Cached services will be discarded at the next disconnect")
}

func (s *Shell) cmdRediscover(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := s.ctrl.Rediscover(ctx); err != nil {
		fmt.Fprintf(s.out, "Rediscover failed: %v\n", err)
		return
	}
	s.cmdStatus()
}

func (s *Shell) cmdDisconnect(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.ctrl.Disconnect(ctx); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if s.ctrl.Manager().State() == connection.StateDisconnected {
		fmt.Fprintln(s.out, "Disconnected")
	}
}

func (s *Shell) cmdPeers() {
	peers := s.ctrl.Peers()
	if len(peers) == 0 {
		fmt.Fprintln(s.out, "No known peers")
		return
	}

	fmt.Fprintln(s.out, "\nKnown Peers")
	fmt.Fprintln(s.out, "-------------------------------------------")
	for _, p := range peers {
		fmt.Fprintf(s.out, "  %-38s connects %-3d lost %-3d last %s\n",
			p.Address, p.Connects, p.Disconnects, p.LastSeenAt.Format(time.DateTime))
	}
}

func (s *Shell) cmdForget(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: forget <address>")
		return
	}

	found, err := s.ctrl.ForgetPeer(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if !found {
		fmt.Fprintf(s.out, "Unknown peer: %s\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "Forgot %s\n", args[0])
}

// parseHex decodes a hex string. Colons and a 0x prefix are ignored.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	s = strings.ReplaceAll(s, ":", "")
	return hex.DecodeString(s)
}
