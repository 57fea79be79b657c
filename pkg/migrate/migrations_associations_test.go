package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fleetdesk/fleetdesk-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestDispatcherAssociationMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_dispatcher_associations.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS dispatcher_associations",
		"CHECK (fee_percentage >= 0 AND fee_percentage <= 100)",
		"ON dispatcher_associations(invite_code) WHERE invite_code IS NOT NULL",
		"ON dispatcher_associations(company_id, invitee_id) WHERE status = 'active'",
		"DROP TABLE IF EXISTS dispatcher_associations",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDriverAssociationMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_driver_associations.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS driver_associations",
		"ON driver_associations(invite_code) WHERE invite_code IS NOT NULL",
		"ON driver_associations(company_id, invitee_id) WHERE status = 'active'",
		"DROP TABLE IF EXISTS driver_associations",
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
		t.Fatalf("no migration matches %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
