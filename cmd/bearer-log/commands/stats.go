package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Connections       map[string]*ConnectionStats
	Errors            int
	Truncated         bool
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single session.
type ConnectionStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	PeerID      string
	Profile     string
	PDUsOut     int
	PDUsIn      int
	BytesOut    int
	BytesIn     int
	SegmentsOut int
	GrantedMTU  int
	Disconnects int
	CacheClears int
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Connections:       make(map[string]*ConnectionStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}
	if event.PeerID != "" && conn.PeerID == "" {
		conn.PeerID = event.PeerID
	}
	if event.Profile != "" && event.Profile != "NONE" {
		conn.Profile = event.Profile
	}

	switch {
	case event.PDU != nil:
		if event.Direction == log.DirectionOut {
			conn.PDUsOut++
			conn.BytesOut += event.PDU.Size
		} else {
			conn.PDUsIn++
			conn.BytesIn += event.PDU.Size
		}
	case event.Segment != nil:
		if event.Direction == log.DirectionOut {
			conn.SegmentsOut++
		}
	case event.Negotiation != nil:
		conn.GrantedMTU = event.Negotiation.Granted
	case event.StateChange != nil:
		// Every disconnect records exactly one cache decision.
		sc := event.StateChange
		if sc.Entity == log.StateEntityCache && sc.Reason == "disconnected" {
			conn.Disconnects++
			if sc.NewState == "CLEAR" {
				conn.CacheClears++
			}
		}
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats prints statistics for the events of the log at path that
// match opts.
func RunStats(path string, opts Options, w io.Writer) error {
	stats := newStats()
	truncated, err := scan(path, opts, func(event log.Event) error {
		stats.add(event)
		return nil
	})
	if err != nil {
		return err
	}
	stats.Truncated = truncated

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Mesh GATT Bearer Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.Truncated {
		fmt.Fprintln(w, "Warning: log ends with a partial event")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerLink, log.LayerBearer} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryNegotiation, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range conns {
			cs := c.stats
			duration := cs.LastSeen.Sub(cs.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenConnID(c.id), cs.Events, duration)
			if cs.PeerID != "" {
				fmt.Fprintf(w, "           Peer: %s\n", cs.PeerID)
			}
			if cs.Profile != "" {
				fmt.Fprintf(w, "           Profile: %s\n", cs.Profile)
			}
			if cs.GrantedMTU > 0 {
				fmt.Fprintf(w, "           MTU: %d\n", cs.GrantedMTU)
			}
			if cs.PDUsOut > 0 || cs.PDUsIn > 0 {
				fmt.Fprintf(w, "           PDUs: %d out (%d bytes, %d segments), %d in (%d bytes)\n",
					cs.PDUsOut, cs.BytesOut, cs.SegmentsOut, cs.PDUsIn, cs.BytesIn)
			}
			if cs.Disconnects > 0 {
				fmt.Fprintf(w, "           Disconnects: %d (cache cleared %d)\n", cs.Disconnects, cs.CacheClears)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
