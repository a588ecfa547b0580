package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// exporter writes events in one output format.
type exporter interface {
	write(event log.Event) error
	flush() error
}

// newExporter returns the exporter for format.
func newExporter(format string, w io.Writer) (exporter, error) {
	switch format {
	case "jsonl":
		return &jsonlExporter{enc: json.NewEncoder(w)}, nil
	case "csv":
		return &csvExporter{cw: csv.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// RunExport converts the events of the log at path that match opts to
// format. An empty output path writes to stdout.
func RunExport(path, format, output string, opts Options) error {
	// Fail on a bad format or filter before creating the output file.
	if _, err := newExporter(format, io.Discard); err != nil {
		return err
	}
	if _, err := opts.Filter(); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	exp, _ := newExporter(format, w)
	if _, err := scan(path, opts, exp.write); err != nil {
		return err
	}
	return exp.flush()
}

type jsonlExporter struct {
	enc *json.Encoder
}

func (e *jsonlExporter) write(event log.Event) error {
	if err := e.enc.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

func (e *jsonlExporter) flush() error { return nil }

var csvHeader = []string{"timestamp", "connection_id", "direction", "layer", "category", "peer_id", "profile", "type", "size", "data"}

type csvExporter struct {
	cw          *csv.Writer
	wroteHeader bool
}

func (e *csvExporter) write(event log.Event) error {
	if !e.wroteHeader {
		if err := e.cw.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.wroteHeader = true
	}

	var size, data string
	switch {
	case event.Segment != nil:
		size = strconv.Itoa(event.Segment.Size)
		data = hex.EncodeToString(event.Segment.Data)
	case event.PDU != nil:
		size = strconv.Itoa(event.PDU.Size)
		data = hex.EncodeToString(event.PDU.Data)
	case event.Negotiation != nil:
		size = strconv.Itoa(event.Negotiation.Granted)
	}

	row := []string{
		event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		event.ConnectionID,
		event.Direction.String(),
		event.Layer.String(),
		event.Category.String(),
		event.PeerID,
		event.Profile,
		eventType(event),
		size,
		data,
	}
	if err := e.cw.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

// flush writes the header for an empty export and flushes buffered rows.
func (e *csvExporter) flush() error {
	if !e.wroteHeader {
		if err := e.cw.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.wroteHeader = true
	}
	e.cw.Flush()
	return e.cw.Error()
}
