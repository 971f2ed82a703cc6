package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadInlineValue(t *testing.T) {
	got, err := Load(Source{Name: "api key", Value: "  tok-123  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("expected trimmed value, got %q", got)
	}
}

func TestLoadFileTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(Source{Name: "api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Errorf("expected file value, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Source{Name: "api key", File: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(Source{Name: "api key", File: path})
	if err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestLoadNothingConfigured(t *testing.T) {
	_, err := Load(Source{Name: "api key"})
	if err == nil {
		t.Fatal("expected error when nothing is configured")
	}
}
