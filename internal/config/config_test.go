package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr: got %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store: got %q, want %q", cfg.Store, StoreMemory)
	}
	if cfg.ResultTTL != 24*time.Hour {
		t.Errorf("ResultTTL: got %s, want 24h", cfg.ResultTTL)
	}
	if cfg.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB: got %d, want 32", cfg.MaxUploadMB)
	}

	tables, err := cfg.Tables()
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if !tables.IsBank("BCA") {
		t.Error("expected default tables to recognize BCA")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transfer.yaml")
	content := `addr: ":9090"
store: redis
redis_addr: "cache:6379"
result_ttl: 30m
banks: [BCA, SHOPEEPAY]
prefixes:
  - SHOPEEPAY=112
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("Addr: got %q", cfg.Addr)
	}
	if cfg.Store != StoreRedis || cfg.RedisAddr != "cache:6379" {
		t.Errorf("store settings: got %q %q", cfg.Store, cfg.RedisAddr)
	}
	if cfg.ResultTTL != 30*time.Minute {
		t.Errorf("ResultTTL: got %s", cfg.ResultTTL)
	}

	tables, err := cfg.Tables()
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if !tables.IsBank("SHOPEEPAY") || tables.IsBank("BRI") {
		t.Errorf("unexpected bank set: %v", tables.Banks())
	}
	if got, _ := tables.PrefixFor("SHOPEEPAY"); got != "112" {
		t.Errorf("PrefixFor(SHOPEEPAY): got %q, want 112", got)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TRANSFER_ADDR", ":7070")
	t.Setenv("TRANSFER_BANKS", "BCA,BRI")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("Addr: got %q, want :7070", cfg.Addr)
	}
	if len(cfg.Banks) != 2 || cfg.Banks[0] != "BCA" || cfg.Banks[1] != "BRI" {
		t.Errorf("Banks: got %v", cfg.Banks)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"TRANSFER_STORE": "mongo"}},
		{"bad prefix entry", map[string]string{"TRANSFER_PREFIXES": "DANA"}},
		{"non-digit prefix", map[string]string{"TRANSFER_PREFIXES": "DANA=abc"}},
		{"zero upload size", map[string]string{"TRANSFER_MAX_UPLOAD_MB": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/transfer.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
