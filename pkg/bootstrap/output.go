package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// SweepResult summarizes one expired-key sweep
type SweepResult struct {
	Persistence string
	TTL         time.Duration
	Deleted     int64
	Elapsed     time.Duration
}

// Sweep deletes expired unverified keys and reports what it removed
func (s *Services) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	deleted, err := s.Service.ExpireSweep(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{
		Persistence: s.Config.Storage.Persistence,
		TTL:         s.Service.TTL(),
		Deleted:     deleted,
		Elapsed:     time.Since(start),
	}, nil
}

// PrintSweepResult writes a short report of a sweep
func PrintSweepResult(w io.Writer, result SweepResult) {
	border := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", border)
	fmt.Fprintln(w, "EXPIRED CONFIRMATION SWEEP")
	fmt.Fprintf(w, "%s\n", border)
	fmt.Fprintf(w, "  Store:      %s\n", result.Persistence)
	fmt.Fprintf(w, "  Key TTL:    %s\n", result.TTL)
	fmt.Fprintf(w, "  Deleted:    %d\n", result.Deleted)
	fmt.Fprintf(w, "  Took:       %s\n", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "%s\n\n", border)
}
