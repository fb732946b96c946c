package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("  file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HH_INTERVIEWER_TEST_TOKEN_FILE", tokenFile)

	tests := []struct {
		name    string
		src     Source
		expect  string
		errPart string
	}{
		{name: "file wins over value", src: Source{Name: "api token", File: tokenFile, Value: "inline"}, expect: "file-token"},
		{name: "env file", src: Source{Name: "api token", Env: "HH_INTERVIEWER_TEST_TOKEN_FILE"}, expect: "file-token"},
		{name: "inline value", src: Source{Value: "  inline  "}, expect: "inline"},
		{name: "empty file", src: Source{Name: "api token", File: emptyFile}, errPart: "is empty"},
		{name: "missing file", src: Source{Name: "api token", File: filepath.Join(dir, "nope")}, errPart: "reading api token"},
		{name: "nothing configured", src: Source{}, errPart: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.errPart != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errPart) {
					t.Fatalf("expected error containing %q, got %v", tt.errPart, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
