//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgresContainer brings up a disposable PostgreSQL 16 instance via
// the testcontainers postgres module, mirroring the teacher's e2e
// framework's wait strategy: two "database system is ready" log lines
// (bootstrap, then ready) and a listening port, with a generous 5-minute
// deadline for slow/first-run image pulls.
func startPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("oscore_ctx"),
		postgres.WithUsername("oscore"),
		postgres.WithPassword("oscore"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting container port: %v", err)
	}

	return fmt.Sprintf("postgres://oscore:oscore@%s:%s/oscore_ctx?sslmode=disable", host, port.Port())
}

// TestPostgresStoreRoundTrip exercises SQLStore against a real PostgreSQL
// server rather than GORM's SQLite driver, the one path the in-process
// sqlite-backed tests in sql_test.go can't reach.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := startPostgresContainer(t)

	if err := MigrateEmbeddedPostgresSchema(context.Background(), dsn); err != nil {
		t.Fatalf("MigrateEmbeddedPostgresSchema: %v", err)
	}

	s, err := NewPostgresStore(dsn, "client-01")
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	ctx := context.Background()

	if err := s.SaveSenderSeq(ctx, 7); err != nil {
		t.Fatalf("SaveSenderSeq: %v", err)
	}
	if err := s.SaveReplayWindow(ctx, 4, 0xdeadbeef); err != nil {
		t.Fatalf("SaveReplayWindow: %v", err)
	}

	seq, highest, bitmap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seq != 7 || highest != 4 || bitmap != 0xdeadbeef {
		t.Fatalf("Load = (%d, %d, %x), want (7, 4, deadbeef)", seq, highest, bitmap)
	}
}

// TestPostgresStoreScopesByID confirms rows for distinct endpoint IDs
// don't clobber each other's state on a real server, same invariant
// TestSQLStoreScopesByID checks against SQLite.
func TestPostgresStoreScopesByID(t *testing.T) {
	dsn := startPostgresContainer(t)

	if err := MigrateEmbeddedPostgresSchema(context.Background(), dsn); err != nil {
		t.Fatalf("MigrateEmbeddedPostgresSchema: %v", err)
	}

	ctx := context.Background()
	a, err := NewPostgresStore(dsn, "endpoint-a")
	if err != nil {
		t.Fatalf("NewPostgresStore(a): %v", err)
	}
	b, err := NewPostgresStore(dsn, "endpoint-b")
	if err != nil {
		t.Fatalf("NewPostgresStore(b): %v", err)
	}

	if err := a.SaveSenderSeq(ctx, 11); err != nil {
		t.Fatalf("SaveSenderSeq(a): %v", err)
	}
	if err := b.SaveSenderSeq(ctx, 22); err != nil {
		t.Fatalf("SaveSenderSeq(b): %v", err)
	}

	seqA, _, _, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("Load(a): %v", err)
	}
	seqB, _, _, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load(b): %v", err)
	}
	if seqA != 11 || seqB != 22 {
		t.Fatalf("got seqA=%d seqB=%d, want 11 and 22", seqA, seqB)
	}
}
