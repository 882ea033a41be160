package benchmark

import (
	"bufio"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/yndnr/discountd/internal/cli/connection"
	"github.com/yndnr/discountd/internal/core/service"
	"github.com/yndnr/discountd/internal/server/codeserver"
	"github.com/yndnr/discountd/internal/storage/memory"
)

// BenchmarkReadRequest benchmarks decoding of use frames.
func BenchmarkReadRequest(b *testing.B) {
	var frame bytes.Buffer
	if err := codeserver.WriteUseRequest(&frame, "ABCD123"); err != nil {
		b.Fatal(err)
	}
	raw := frame.Bytes()
	r := bytes.NewReader(raw)
	br := bufio.NewReader(r)

	b.ReportAllocs()
	b.SetBytes(int64(len(raw)))
	for i := 0; i < b.N; i++ {
		r.Reset(raw)
		br.Reset(r)
		if _, err := codeserver.ReadRequest(br); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRoundTrip measures a use request over loopback TCP.
func BenchmarkRoundTrip(b *testing.B) {
	store := memory.New()
	codes := prefillStore(b, store, 10000)

	cfg := codeserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := codeserver.New(cfg, service.NewCodeService(repo{store}, nil), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start: %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	ctx := context.Background()
	client, err := connection.Dial(ctx, srv.Addr().String())
	if err != nil {
		b.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := client.Use(ctx, codes[i%len(codes)]); err != nil {
			b.Fatal(err)
		}
	}
}
