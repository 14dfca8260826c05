package db

import (
	"io/fs"
	"strings"
	"testing"

	"smm-planner/migrations"
)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/smm?sslmode=disable": "pgx5://u:p@db:5432/smm?sslmode=disable",
		"postgresql://db/smm":                        "pgx5://db/smm",
		"pgx5://db/smm":                              "pgx5://db/smm",
	}
	for in, want := range cases {
		if got := MigrateURL(in); got != want {
			t.Fatalf("для %s ожидали %s, получили %s", in, want, got)
		}
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	ups, downs := 0, 0
	for _, name := range entries {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups++
		case strings.HasSuffix(name, ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Fatalf("ожидали парные up/down миграции, получили up=%d down=%d", ups, downs)
	}
	schema, err := fs.ReadFile(migrations.FS, "0001_init.up.sql")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.Contains(string(schema), "UNIQUE (company_id, url)") {
		t.Fatalf("seo_page должна быть уникальна по (company_id, url)")
	}
}
