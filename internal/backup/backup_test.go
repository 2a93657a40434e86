package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rfinnegan/boxroom/internal/database"
	"github.com/rfinnegan/boxroom/internal/model"
)

// mockS3 implements s3API for testing.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func setupManager(t *testing.T) (*Manager, *mockS3) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "boxroom.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m, err := NewManager(db, Config{
		DBPath:        dbPath,
		Dir:           filepath.Join(dir, "backups"),
		Passphrase:    "test-passphrase",
		RetentionDays: 30,
	}, slog.Default())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	mock := newMockS3()
	m.s3 = mock
	return m, mock
}

func TestNewManagerRequiresPassphrase(t *testing.T) {
	if _, err := NewManager(nil, Config{Dir: t.TempDir()}, slog.Default()); err == nil {
		t.Fatal("expected error for missing passphrase")
	}
}

func TestRunNowUploadsAndRecords(t *testing.T) {
	m, mock := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := m.backups.GetByID(id)
	if err != nil {
		t.Fatalf("get backup record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if record.SizeBytes == 0 {
		t.Error("expected non-zero backup size")
	}
	if record.S3Key == "" {
		t.Error("expected S3 key on uploaded backup")
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	data, ok := mock.objects[record.S3Key]
	if !ok {
		t.Fatalf("expected object %q in mock S3", record.S3Key)
	}
	if len(data) < saltSize+nonceSize {
		t.Errorf("uploaded object too small: %d bytes", len(data))
	}
}

func TestRunNowLocalOnly(t *testing.T) {
	m, _ := setupManager(t)
	m.s3 = nil

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := m.backups.GetByID(id)
	if err != nil {
		t.Fatalf("get backup record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if record.S3Key != "" {
		t.Errorf("expected empty S3 key for local-only backup, got %q", record.S3Key)
	}
}

func TestRunNowUploadFailureMarksFailed(t *testing.T) {
	m, mock := setupManager(t)
	mock.putErr = context.DeadlineExceeded

	id, err := m.RunNow(context.Background())
	if err == nil {
		t.Fatal("expected error when upload fails")
	}

	record, gerr := m.backups.GetByID(id)
	if gerr != nil {
		t.Fatalf("get backup record: %v", gerr)
	}
	if record.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusFailed)
	}
	if record.ErrorMessage == "" {
		t.Error("expected error message on failed backup")
	}
}

func TestPruneRemovesExpiredRecords(t *testing.T) {
	m, mock := setupManager(t)

	if _, err := m.RunNow(context.Background()); err != nil {
		t.Fatalf("run backup: %v", err)
	}

	// Age the record past the retention window.
	old := time.Now().UTC().AddDate(0, 0, -(m.config.RetentionDays + 1))
	if _, err := m.db.Exec(`UPDATE backups SET created_at = ?`, old); err != nil {
		t.Fatalf("age backup record: %v", err)
	}

	if err := m.pruneOld(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	remaining, err := m.List(10)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected 0 backups after prune, got %d", len(remaining))
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if len(mock.objects) != 0 {
		t.Errorf("expected 0 objects in mock S3 after prune, got %d", len(mock.objects))
	}
}
