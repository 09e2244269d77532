package db

import (
	"strings"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("migrations not ordered: %d after %d", migrations[i].Version, migrations[i-1].Version)
		}
	}

	schema := migrations[0].SQL
	for _, want := range []string{"doctor_shifts", "appointments_no_overlap", "WHERE (status IN (0, 1, 2, 3))", "invoices"} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema is missing %q", want)
		}
	}
}
