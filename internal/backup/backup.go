package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rfinnegan/boxroom/internal/model"
	"github.com/rfinnegan/boxroom/internal/store"
)

// Config holds backup settings.
type Config struct {
	DBPath        string
	Dir           string // local directory for encrypted backup files
	Passphrase    string
	IntervalHours int
	RetentionDays int
	S3            S3Config
}

// S3Config holds credentials for offsite backup storage. Zero value means
// local-only backups.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
}

func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// s3API is the subset of the S3 client the manager uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Manager creates encrypted database backups on a schedule, keeps them in a
// local directory and optionally uploads them to S3-compatible storage.
type Manager struct {
	db      *sql.DB
	backups *store.BackupStore
	config  Config
	s3      s3API
	logger  *slog.Logger

	stop chan struct{}
	done chan struct{}
}

func NewManager(db *sql.DB, config Config, logger *slog.Logger) (*Manager, error) {
	if config.Passphrase == "" {
		return nil, fmt.Errorf("backup passphrase is required")
	}
	if config.IntervalHours <= 0 {
		config.IntervalHours = 24
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = 30
	}
	if err := os.MkdirAll(config.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	m := &Manager{
		db:      db,
		backups: store.NewBackupStore(db),
		config:  config,
		logger:  logger.With("component", "backup"),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if config.S3.Configured() {
		m.s3 = newS3Client(config.S3)
	}

	return m, nil
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start runs the scheduled backup loop until Stop is called.
func (m *Manager) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(time.Duration(m.config.IntervalHours) * time.Hour)
		defer ticker.Stop()

		m.logger.Info("backup schedule started",
			"interval_hours", m.config.IntervalHours,
			"retention_days", m.config.RetentionDays,
			"s3", m.s3 != nil)

		for {
			select {
			case <-ticker.C:
				if _, err := m.RunNow(context.Background()); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}

// List returns the most recent backup records.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backups.List(limit)
}

// RunNow performs a backup immediately and returns the backup record ID.
func (m *Manager) RunNow(ctx context.Context) (int64, error) {
	filename := fmt.Sprintf("backup-%s.db.enc", time.Now().UTC().Format("20060102-150405"))

	record, err := m.backups.Create(filename)
	if err != nil {
		return 0, err
	}

	if err := m.runBackup(ctx, record); err != nil {
		if uerr := m.backups.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Error("mark backup failed", "error", uerr)
		}
		return record.ID, err
	}

	if err := m.pruneOld(ctx); err != nil {
		m.logger.Warn("prune old backups", "error", err)
	}

	return record.ID, nil
}

func (m *Manager) runBackup(ctx context.Context, record *model.Backup) error {
	start := time.Now()

	// Flush the WAL so the snapshot contains every committed write.
	if _, err := m.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}

	snapshot := filepath.Join(m.config.Dir, record.Filename+".tmp")
	defer os.Remove(snapshot)
	if err := copyFile(m.config.DBPath, snapshot); err != nil {
		return fmt.Errorf("snapshot database: %w", err)
	}

	encrypted := filepath.Join(m.config.Dir, record.Filename)
	if err := EncryptFile(snapshot, encrypted, m.config.Passphrase); err != nil {
		return err
	}

	info, err := os.Stat(encrypted)
	if err != nil {
		return fmt.Errorf("stat encrypted backup: %w", err)
	}

	var s3Key string
	if m.s3 != nil {
		if err := m.backups.UpdateStatus(record.ID, model.BackupStatusUploading, ""); err != nil {
			return err
		}
		s3Key = m.config.S3.Prefix + record.Filename
		if err := m.upload(ctx, encrypted, s3Key); err != nil {
			return fmt.Errorf("upload backup: %w", err)
		}
	}

	if err := m.backups.UpdateCompleted(record.ID, info.Size(), s3Key); err != nil {
		return err
	}

	m.logger.Info("backup completed",
		"filename", record.Filename,
		"size_bytes", info.Size(),
		"uploaded", s3Key != "",
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Manager) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = m.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.config.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/octet-stream"),
	})
	return err
}

// pruneOld deletes backup records, local files and S3 objects older than the
// retention window.
func (m *Manager) pruneOld(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -m.config.RetentionDays)
	old, err := m.backups.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}

	for _, b := range old {
		local := filepath.Join(m.config.Dir, b.Filename)
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("remove old backup file", "filename", b.Filename, "error", err)
		}
		if m.s3 != nil && b.S3Key != "" {
			_, err := m.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(m.config.S3.Bucket),
				Key:    aws.String(b.S3Key),
			})
			if err != nil {
				m.logger.Warn("remove old backup object", "key", b.S3Key, "error", err)
			}
		}
	}

	if len(old) > 0 {
		m.logger.Info("pruned old backups", "count", len(old))
	}
	return nil
}

// Restore decrypts a backup file to destPath. The server must be restarted
// against the restored file afterwards.
func Restore(backupPath, destPath, passphrase string) error {
	return DecryptFile(backupPath, destPath, passphrase)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
