// Package benchmark provides performance benchmarks for the discount service.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run with specific table sizes:
//
//	go test -bench=BenchmarkSnapshot -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
