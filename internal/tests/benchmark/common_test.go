package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/sitegate/internal/storage/memory"
)

// SessionCounts defines the live session counts for benchmarking. An admin
// deployment rarely holds more than a handful; the upper sizes bound the
// cost of the sweep that runs before each issue.
var SessionCounts = []int{10, 1000, 10000}

// prefillStore issues count sessions and returns their tokens.
func prefillStore(b *testing.B, store *memory.Store, count int) []string {
	b.Helper()
	ctx := context.Background()
	tokens := make([]string, count)
	for i := range tokens {
		tok, _, err := store.Issue(ctx, fmt.Sprintf("admin-%d", i%10))
		if err != nil {
			b.Fatalf("Issue failed: %v", err)
		}
		tokens[i] = tok
	}
	return tokens
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithSessionCounts runs benchFn once per entry in SessionCounts.
func runWithSessionCounts(b *testing.B, benchFn func(b *testing.B, count int)) {
	for _, count := range SessionCounts {
		b.Run(fmt.Sprintf("sessions_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
