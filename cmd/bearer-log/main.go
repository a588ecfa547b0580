// Command bearer-log is a tool for viewing and analyzing mesh GATT bearer
// protocol log files.
//
// Log files are written by bearer-ctl when run with the -protocol-log flag.
//
// Usage:
//
//	bearer-log <command> [flags] <file.blog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View only bearer-layer events
//	bearer-log view --layer bearer session.blog
//
//	# View MTU negotiations
//	bearer-log view --category negotiation session.blog
//
//	# Export to CSV
//	bearer-log export --format csv -o session.csv session.blog
//
//	# Keep one peer's traffic
//	bearer-log filter --peer AA:BB:CC:DD:EE:FF -o peer.blog session.blog
//
//	# Show statistics for one session
//	bearer-log stats --conn-id 3f2a9c1e-0b7d-4e55-9a61-2c8d7e4f1a90 session.blog
//
// Every command accepts the same selection flags: -conn-id, -peer,
// -time-start, -time-end, -layer, -direction and -category.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/meshgatt/meshgatt-go/cmd/bearer-log/commands"
)

const usage = `bearer-log - Mesh GATT Bearer Log Analyzer

Usage:
  bearer-log <command> [flags] <file.blog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "bearer-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set whose usage text names the subcommand.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "bearer-log %s - %s\n\nUsage:\n  bearer-log %s [flags] <file.blog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// parsePath parses args and returns the log file argument, exiting when it
// is missing.
func parsePath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// addSelectionFlags registers the event selection flags shared by every
// command.
func addSelectionFlags(fs *flag.FlagSet) *commands.Options {
	opts := &commands.Options{}
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.PeerID, "peer", "", "Filter by peer address")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (link, bearer)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, negotiation, error)")
	return opts
}

func runView(args []string) {
	fs := newFlagSet("view", "View log file in human-readable format")
	opts := addSelectionFlags(fs)
	path := parsePath(fs, args)

	if err := commands.RunView(path, *opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export log file to JSON or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	opts := addSelectionFlags(fs)
	path := parsePath(fs, args)

	if err := commands.RunExport(path, *format, *output, *opts); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter log file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	opts := addSelectionFlags(fs)
	path := parsePath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunFilter(path, *output, *opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the log file")
	opts := addSelectionFlags(fs)
	path := parsePath(fs, args)

	if err := commands.RunStats(path, *opts, os.Stdout); err != nil {
		fail(err)
	}
}
