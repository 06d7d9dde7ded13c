package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// runCmd executes the root command with args, isolated from the user's
// real config and audit database.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	flagConfig = ""
	flagVerbose = false

	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestPatternsList(t *testing.T) {
	out, err := runCmd(t, "patterns", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"NAME", "email", "contact", "aadhaar_spaced"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}
}

func TestPatternsAddPersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.toml")

	if _, err := runCmd(t, "patterns", "add", "employee_id", `EMP-\d{6}`, "--file", file); err != nil {
		t.Fatal(err)
	}
	patternsFile = ""

	var loaded struct {
		Patterns map[string]string `toml:"patterns"`
	}
	if _, err := toml.DecodeFile(file, &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Patterns["employee_id"] != `EMP-\d{6}` {
		t.Errorf("persisted patterns = %v", loaded.Patterns)
	}
}

func TestPatternsAddInvalidRegex(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.toml")
	_, err := runCmd(t, "patterns", "add", "broken", `[unclosed`, "--file", file)
	if err == nil {
		t.Fatal("invalid regex accepted")
	}
	patternsFile = ""
	if _, statErr := os.Stat(file); !os.IsNotExist(statErr) {
		t.Error("invalid pattern was persisted")
	}
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(in, []byte("aadhaar 1234 5678 9012 on file"), 0o644); err != nil {
		t.Fatal(err)
	}
	report := filepath.Join(dir, "report.json")

	_, err := runCmd(t, "process", in, "--report", report, "--no-audit")
	if err != nil {
		t.Fatal(err)
	}

	redacted, err := os.ReadFile(filepath.Join(dir, "note_redacted.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(redacted), "1234 5678 9012") {
		t.Errorf("redaction did not happen: %q", redacted)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report missing: %v", err)
	}
}

func TestProcessCommandNoFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmd(t, "process", dir); err == nil {
		t.Error("empty directory accepted")
	}
}
