package model

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imagestudio/internal/config"
)

func TestDSNBuilders(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*config.Config) string
		cfg      config.Config
		contains []string
	}{
		{
			name:     "mysql 拼接",
			build:    mysqlDSN,
			cfg:      config.Config{DBUser: "u", DBPassword: "p", DBAddr: "db", DBPort: "3306", DBName: "studio"},
			contains: []string{"u:p@tcp(db:3306)/studio", "parseTime=True", "loc=UTC"},
		},
		{
			name:     "mysql 使用 DSN_URL",
			build:    mysqlDSN,
			cfg:      config.Config{DSNURL: " root@tcp(x)/y ", DBAddr: "ignored"},
			contains: []string{"root@tcp(x)/y"},
		},
		{
			name:     "postgres 本地",
			build:    postgresDSN,
			cfg:      config.Config{DBUser: "u", DBPassword: "p", DBAddr: "localhost", DBPort: "5432", DBName: "studio"},
			contains: []string{"host=localhost", "dbname=studio", "sslmode=disable"},
		},
		{
			name:     "postgres supabase",
			build:    postgresDSN,
			cfg:      config.Config{DBAddr: "db.abc.supabase.co", DBPort: "5432"},
			contains: []string{"sslmode=require"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.build(&tt.cfg)
			for _, want := range tt.contains {
				if !strings.Contains(dsn, want) {
					t.Errorf("dsn %q missing %q", dsn, want)
				}
			}
		})
	}
}

func TestInitRepositorySQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studio.db")
	repo, err := InitRepository(&config.Config{DBType: "SQLite", DBPath: path})
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("expected database directory to be created: %v", err)
	}
	if err := SeedDefaultTemplates(context.Background(), repo); err != nil {
		t.Fatalf("seed sqlite: %v", err)
	}
	if err := repo.IncrementTemplateUsage(context.Background(), "anime"); err != nil {
		t.Fatalf("increment: %v", err)
	}
}
