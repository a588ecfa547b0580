package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// RunFilter copies the events of the log at path that match opts into a
// new log file at output and reports the count on w.
func RunFilter(path, output string, opts Options, w io.Writer) error {
	if output == "" {
		return errors.New("output file required")
	}
	// Validate before creating the output file.
	if _, err := opts.Filter(); err != nil {
		return err
	}

	out, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}

	count := 0
	truncated, err := scan(path, opts, func(event log.Event) error {
		out.Log(event)
		count++
		return nil
	})
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if dropped := out.Dropped(); dropped > 0 {
		return fmt.Errorf("%d events could not be written to %s", dropped, output)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	if truncated {
		fmt.Fprintf(w, "warning: %v\n", log.ErrTruncated)
	}
	return nil
}
