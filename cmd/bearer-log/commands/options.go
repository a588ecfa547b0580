package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// Options are the event selection flags shared by every command. Empty
// fields select everything.
type Options struct {
	ConnID    string
	PeerID    string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// Filter converts the options into a log.Filter.
func (o Options) Filter() (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: o.ConnID,
		PeerID:       o.PeerID,
	}

	var err error
	if filter.TimeStart, err = parseTime("time-start", o.TimeStart); err != nil {
		return filter, err
	}
	if filter.TimeEnd, err = parseTime("time-end", o.TimeEnd); err != nil {
		return filter, err
	}

	if o.Layer != "" {
		l, err := parseLayer(o.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := parseDirection(o.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := parseCategory(o.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}

	return filter, nil
}

// scan streams the events of the log at path that match opts through fn.
// A partial event at the end of the file is not an error; it is reported
// through the returned flag.
func scan(path string, opts Options, fn func(log.Event) error) (truncated bool, err error) {
	filter, err := opts.Filter()
	if err != nil {
		return false, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return false, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.Events() {
		if errors.Is(err, log.ErrTruncated) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return false, err
		}
	}
	return false, nil
}

func parseTime(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", flag, err)
	}
	return &t, nil
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "link":
		return log.LayerLink, nil
	case "bearer":
		return log.LayerBearer, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be link or bearer)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "negotiation":
		return log.CategoryNegotiation, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, negotiation, or error)", s)
	}
}
