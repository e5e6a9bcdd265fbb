package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBackupUnsupported is returned when the store cannot snapshot itself.
var ErrBackupUnsupported = errors.New("backup is only supported for sqlite databases")

// BackupPath returns the snapshot file name for a database at dbPath.
func BackupPath(dbPath string, at time.Time) string {
	ext := filepath.Ext(dbPath)
	base := strings.TrimSuffix(dbPath, ext)
	if ext == "" {
		ext = ".db"
	}
	return fmt.Sprintf("%s.backup-%s%s", base, at.Format("20060102-150405"), ext)
}

// Backup writes a consistent copy of a sqlite database to destPath.
func (s *Store) Backup(ctx context.Context, destPath string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if s.kind != KindSQLite {
		return ErrBackupUnsupported
	}

	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid backup path: contains forbidden characters")
	}
	abs, err := filepath.Abs(destPath)
	if err != nil {
		return fmt.Errorf("invalid backup path: %w", err)
	}
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("backup %s already exists", abs)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0750); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	// #nosec G201 - abs is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", abs)); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	return nil
}
