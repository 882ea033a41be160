package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/storage/memory"
)

// CodeCounts defines the table sizes for benchmarking.
var CodeCounts = []int{10000, 50000, 100000, 500000}

// SmallCodeCounts for quick benchmarks.
var SmallCodeCounts = []int{1000, 10000, 50000}

// repo adapts memory.Store to service.CodeRepository without persistence.
type repo struct {
	*memory.Store
}

func (repo) MarkDirty() {}

// prefillStore inserts count distinct 8-character codes.
func prefillStore(b *testing.B, store *memory.Store, count int) []string {
	b.Helper()
	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := domain.GenerateCode(domain.MaxCodeLength)
		if err != nil {
			b.Fatalf("GenerateCode: %v", err)
		}
		if store.Insert(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCodeCounts runs a benchmark function with various table sizes.
func runWithCodeCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("codes_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
