package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"jobfit/internal/config"
	"jobfit/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelError)

func TestStartPromptWatcherWithoutPromptFiles(t *testing.T) {
	watcher, err := startPromptWatcher(&config.Config{}, testLogger)
	if err != nil {
		t.Fatalf("startPromptWatcher: %v", err)
	}
	if watcher != nil {
		t.Error("Expected no watcher when the config names no prompt files")
	}
}

func TestStartPromptWatcherWatchesConfiguredFiles(t *testing.T) {
	promptFile := filepath.Join(t.TempDir(), "summarize.txt")
	if err := os.WriteFile(promptFile, []byte("Summarize the analysis."), 0600); err != nil {
		t.Fatalf("writing prompt file: %v", err)
	}

	cfg := &config.Config{}
	cfg.AI.CustomPrompts.SystemPrompts.SummarizeFile = promptFile

	watcher, err := startPromptWatcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("startPromptWatcher: %v", err)
	}
	if watcher == nil {
		t.Fatal("Expected a running watcher for the configured prompt file")
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	}()

	if !watcher.IsRunning() {
		t.Error("Expected watcher to report running after start")
	}
}
