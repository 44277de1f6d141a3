package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gazette.log")
	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() { _ = Setup(DefaultConfig()) }()

	componentLog := WithComponent("extract")
	componentLog.Info().Msg("hello")
	fieldsLog := WithFields(map[string]interface{}{"workers": 4})
	fieldsLog.Debug().Msg("fields")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"component":"extract"`, `"message":"hello"`, `"workers":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
