package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Checkpoint errors.
var (
	ErrCheckpointNotFound   = errors.New("checkpoint not found")
	ErrCheckpointCorrupted  = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists     = errors.New("checkpoint already exists")
	ErrInvalidCheckpointTag = errors.New("invalid checkpoint tag")
	ErrCheckpointInMemory   = errors.New("in-memory databases cannot be checkpointed")
)

// maxAutoCheckpoints is how many automatic checkpoints are kept.
const maxAutoCheckpoints = 5

var checkpointTagPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Checkpoint describes a saved copy of the ledger.
type Checkpoint struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	Vendors       int       `json:"vendors"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// CheckpointManager saves and restores copies of the database file.
// Each checkpoint is a <tag>.db copy plus a <tag>.meta.json description.
type CheckpointManager struct {
	db     *sql.DB
	now    func() time.Time
	dbPath string
	dir    string
}

// Checkpoints returns a manager for this database's checkpoints, kept in a
// "checkpoints" directory beside the database file.
func (s *SQLiteStorage) Checkpoints() (*CheckpointManager, error) {
	if s.dbPath == ":memory:" {
		return nil, ErrCheckpointInMemory
	}
	return NewCheckpointManager(s.db, s.dbPath)
}

// NewCheckpointManager creates a checkpoint manager for the database at dbPath.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	dbPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	dir := filepath.Join(filepath.Dir(dbPath), "checkpoints")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:     db,
		dbPath: dbPath,
		dir:    dir,
		now:    time.Now,
	}, nil
}

// Dir returns the directory checkpoints are written to.
func (cm *CheckpointManager) Dir() string {
	return cm.dir
}

// Create saves a checkpoint. An empty tag is generated from the current time.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*Checkpoint, error) {
	return cm.create(ctx, tag, description, false)
}

// AutoCheckpoint saves a checkpoint before operation and prunes old automatic ones.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, operation string) (*Checkpoint, error) {
	tag := fmt.Sprintf("auto-%s-%s", operation, cm.now().Format("20060102-150405.000"))
	cp, err := cm.create(ctx, tag, "Automatic checkpoint before "+operation, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.pruneAuto(ctx); err != nil {
		slog.Warn("Failed to clean up old auto-checkpoints", "error", err)
	}
	return cp, nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*Checkpoint, error) {
	if tag == "" {
		tag = "checkpoint-" + cm.now().Format("2006-01-02-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	dbFile, metaFile := cm.paths(tag)
	if _, err := os.Stat(dbFile); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	cp := Checkpoint{
		ID:          tag,
		Description: description,
		CreatedAt:   cm.now(),
		IsAuto:      auto,
	}

	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&cp.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	cp.Transactions = cm.count(ctx, "SELECT COUNT(*) FROM transactions")
	cp.Vendors = cm.count(ctx, "SELECT COUNT(*) FROM vendors")

	// VACUUM INTO writes a consistent, compacted copy even while WAL is in use.
	target := strings.ReplaceAll(dbFile, "'", "''")
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", target)); err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	info, err := os.Stat(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	cp.FileSize = info.Size()

	if err := writeMetadata(metaFile, cp); err != nil {
		if rmErr := os.Remove(dbFile); rmErr != nil {
			slog.Error("Failed to remove checkpoint after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save checkpoint metadata: %w", err)
	}

	slog.Info("Created checkpoint", "id", cp.ID, "transactions", cp.Transactions, "auto", auto)
	return &cp, nil
}

// count runs a COUNT query, treating a missing table as empty.
func (cm *CheckpointManager) count(ctx context.Context, query string) int {
	var n int
	if err := cm.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0
	}
	return n
}

// List returns all checkpoints, newest first. Unreadable metadata is skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]Checkpoint, error) {
	entries, err := os.ReadDir(cm.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	var checkpoints []Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		cp, err := readMetadata(filepath.Join(cm.dir, entry.Name()))
		if err != nil {
			slog.Debug("Skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, *cp)
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})
	return checkpoints, nil
}

// Get returns one checkpoint's description.
func (cm *CheckpointManager) Get(_ context.Context, id string) (*Checkpoint, error) {
	if err := validateTag(id); err != nil {
		return nil, err
	}
	_, metaFile := cm.paths(id)
	cp, err := readMetadata(metaFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	return cp, nil
}

// Restore replaces the database with checkpoint id. It closes the database
// connection, so the owning storage must not be used afterwards.
func (cm *CheckpointManager) Restore(ctx context.Context, id string) error {
	if _, err := cm.Get(ctx, id); err != nil {
		return err
	}
	dbFile, _ := cm.paths(id)
	if _, err := os.Stat(dbFile); err != nil {
		return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
	}
	if err := verifyIntegrity(dbFile); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointCorrupted, err)
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backup := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backup); err != nil {
		return fmt.Errorf("failed to back up current database: %w", err)
	}

	if err := copyFile(dbFile, cm.dbPath); err != nil {
		if restoreErr := copyFile(backup, cm.dbPath); restoreErr != nil {
			slog.Error("Failed to put back database after restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	// Journal files of the replaced database must not be replayed into the restored one.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove journal file", "file", cm.dbPath+suffix, "error", err)
		}
	}
	if err := os.Remove(backup); err != nil {
		slog.Warn("Failed to remove restore backup", "file", backup, "error", err)
	}

	slog.Info("Restored checkpoint", "id", id)
	return nil
}

// Delete removes a checkpoint.
func (cm *CheckpointManager) Delete(_ context.Context, id string) error {
	if err := validateTag(id); err != nil {
		return err
	}
	dbFile, metaFile := cm.paths(id)

	if err := os.Remove(dbFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, id)
		}
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	if err := os.Remove(metaFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("Failed to remove checkpoint metadata", "file", metaFile, "error", err)
	}
	return nil
}

func (cm *CheckpointManager) pruneAuto(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoCheckpoints {
			if err := cm.Delete(ctx, cp.ID); err != nil {
				slog.Debug("Failed to delete old auto-checkpoint", "id", cp.ID, "error", err)
			}
		}
	}
	return nil
}

func (cm *CheckpointManager) paths(tag string) (dbFile, metaFile string) {
	return filepath.Join(cm.dir, tag+".db"), filepath.Join(cm.dir, tag+".meta.json")
}

func validateTag(tag string) error {
	if !checkpointTagPattern.MatchString(tag) || strings.Contains(tag, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointTag, tag)
	}
	return nil
}

func writeMetadata(path string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from a validated tag
	if err != nil {
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// copyFile copies src over dst through a temporary file and rename.
func copyFile(src, dst string) error {
	source, err := os.Open(src) // #nosec G304 -- database and checkpoint paths only
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	destination, err := os.Create(tmp) // #nosec G304 -- database and checkpoint paths only
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
