package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// contextState is the GORM model backing SQLStore: one row per (sender_id,
// recipient_id, id_context) tuple a caller registers via ID.
type contextState struct {
	ID            string `gorm:"primaryKey"`
	SeqNum        uint64
	ReplayHighest uint64
	ReplayBitmap  uint32
}

// SQLStore implements pkg/oscore.ContextStore on top of GORM, supporting
// both SQLite and PostgreSQL via the same code, following the teacher's
// GORMStore (pkg/controlplane/store/gorm.go).
type SQLStore struct {
	db *gorm.DB
	id string
}

// NewSQLiteStore opens (or creates) a SQLite database at path and migrates
// the contextState table. The connection string carries the same
// WAL/busy-timeout pragmas the teacher's controlplane store uses for
// concurrent access.
func NewSQLiteStore(path, id string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite store directory: %w", err)
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite context store: %w", err)
	}
	if err := db.AutoMigrate(&contextState{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite context store: %w", err)
	}
	return &SQLStore{db: db, id: id}, nil
}

// NewPostgresStore opens a PostgreSQL database and migrates the
// contextState table via GORM AutoMigrate. Use MigrateEmbeddedPostgresSchema
// instead at deploy time when golang-migrate's versioned, advisory-locked
// migration path is preferred over AutoMigrate (§4.13).
func NewPostgresStore(dsn, id string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("opening postgres context store: %w", err)
	}
	if err := db.AutoMigrate(&contextState{}); err != nil {
		return nil, fmt.Errorf("migrating postgres context store: %w", err)
	}
	return &SQLStore{db: db, id: id}, nil
}

// Load implements pkg/oscore.ContextStore. A missing row (first use of this
// id) reports the zero state rather than an error.
func (s *SQLStore) Load(ctx context.Context) (seq uint64, highest uint64, bitmap uint32, err error) {
	var row contextState
	err = s.db.WithContext(ctx).Where("id = ?", s.id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, 0, nil
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return row.SeqNum, row.ReplayHighest, row.ReplayBitmap, nil
}

// SaveSenderSeq implements pkg/oscore.ContextStore.
func (s *SQLStore) SaveSenderSeq(ctx context.Context, seq uint64) error {
	return s.upsert(ctx, map[string]any{"seq_num": seq})
}

// SaveReplayWindow implements pkg/oscore.ContextStore.
func (s *SQLStore) SaveReplayWindow(ctx context.Context, highest uint64, bitmap uint32) error {
	return s.upsert(ctx, map[string]any{"replay_highest": highest, "replay_bitmap": bitmap})
}

// upsert creates the row for s.id on first use, otherwise updates only the
// given columns - mirroring GetPayloadStore/UpdatePayloadStore's
// First-then-Updates pattern in the teacher's controlplane store.
func (s *SQLStore) upsert(ctx context.Context, cols map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row contextState
		err := tx.Where("id = ?", s.id).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = contextState{ID: s.id}
			applyColumns(&row, cols)
			return tx.Create(&row).Error
		case err != nil:
			return err
		default:
			return tx.Model(&contextState{}).Where("id = ?", s.id).Updates(cols).Error
		}
	})
}

// applyColumns sets the subset of contextState fields named in cols - the
// only columns Save{SenderSeq,ReplayWindow} ever pass.
func applyColumns(row *contextState, cols map[string]any) {
	if v, ok := cols["seq_num"]; ok {
		row.SeqNum = v.(uint64)
	}
	if v, ok := cols["replay_highest"]; ok {
		row.ReplayHighest = v.(uint64)
	}
	if v, ok := cols["replay_bitmap"]; ok {
		row.ReplayBitmap = v.(uint32)
	}
}
