package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTrackingEventsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_tracking_events.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS tracking_events",
		"FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE",
		"CHECK (step_rank >= 1 AND step_rank <= 9)",
		"DROP TABLE IF EXISTS tracking_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAttachmentsMigrationEnforcesExclusiveTag(t *testing.T) {
	content := readMigration(t, "*_create_attachments.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS attachments",
		"CHECK ((step_rank IS NULL) <> (document_type IS NULL))",
		"CHECK (folder IN ('workflow', 'documents'))",
		"storage_path TEXT NOT NULL UNIQUE",
		"DROP TABLE IF EXISTS attachments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDeletionLogsMigrationConstrainsReasons(t *testing.T) {
	content := readMigration(t, "*_create_deletion_logs.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS deletion_logs",
		"CHECK (reason IN ('auto-expiry', 'manual-delete', 'orphaned-cleanup'))",
		"DROP TABLE IF EXISTS deletion_logs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
