package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTodayPrintsConfiguredQuestion(t *testing.T) {
	path := writeConfig(t, `
log:
  level: error
practice:
  timezone: UTC
  questions:
    - "What did you practise today?"
`)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"today", "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("today: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "daily-") || lines[1] != "What did you practise today?" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestTodayRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"duplicate policy": "practice:\n  duplicatePolicy: overwrite\n",
		"timezone":         "practice:\n  timezone: Not/AZone\n",
	}
	for name, body := range cases {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"today", "--config", writeConfig(t, "log:\n  level: error\n"+body)})
		if err := cmd.Execute(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "--config", writeConfig(t, "log:\n  level: error\n")})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected missing postgres error, got %v", err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
