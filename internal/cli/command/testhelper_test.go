package command

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/discountd/internal/core/service"
	"github.com/yndnr/discountd/internal/server/codeserver"
	"github.com/yndnr/discountd/internal/storage/memory"
)

type memRepo struct {
	*memory.Store
}

func (memRepo) MarkDirty() {}

// startServer runs a codeserver on a loopback port.
func startServer(t *testing.T) (string, *memory.Store) {
	t.Helper()

	store := memory.New()
	cfg := codeserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.PollInterval = 10 * time.Millisecond

	srv := codeserver.New(cfg, service.NewCodeService(memRepo{store}, nil), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String(), store
}

// runApp runs the CLI with args and stdin, returning stdout.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	app := App()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := append([]string{"discount-cli", "--history-file", ""}, args...)
	err := app.Run(full)
	return stdout.String(), err
}
