package update

import (
	"context"
	"testing"
	"time"

	"settings-service/internal/hardware"
	"settings-service/internal/logger"
	"settings-service/internal/params"
	"settings-service/internal/types"
)

// Mock Runner
type mockRunner struct {
	commands []string
}

func (m *mockRunner) Run(ctx context.Context, command string) hardware.Result {
	m.commands = append(m.commands, command)
	return hardware.Result{}
}

func setupWorkflow(t *testing.T) (*Workflow, *params.Client, *mockRunner) {
	t.Helper()

	client := params.NewClient(params.NewMemoryEngine(), logger.Discard())
	if err := client.Start(); err != nil {
		t.Fatalf("Failed to start client: %v", err)
	}

	runner := &mockRunner{}
	w := NewWorkflow(client, client, runner, logger.Discard(), Options{
		Brand:      "openpilot",
		OSVersion:  "NEOS 17",
		UpdaterCmd: "pkill -1 -f selfdrive.updated",
	})
	w.now = func() time.Time { return time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC) }
	client.OnChange(w.HandleChange)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Failed to start workflow: %v", err)
	}
	t.Cleanup(w.Stop)

	return w, client, runner
}

// ===== Check =====

func TestCheckOnroadDoesNothing(t *testing.T) {
	w, client, runner := setupWorkflow(t)
	client.PutBool(params.KeyIsOffroad, false)

	if err := w.Check(); err != ErrNotOffroad {
		t.Fatalf("Check() = %v, want ErrNotOffroad", err)
	}
	if w.State() != types.UpdateIdle {
		t.Errorf("Expected idle, got %s", w.State())
	}
	if client.Watching(client.PathOf(params.KeyLastUpdateTime)) {
		t.Error("LastUpdateTime should not be watched")
	}
	if len(runner.commands) != 0 {
		t.Errorf("Updater should not be signalled, got %v", runner.commands)
	}
}

func TestCheckOffroadStartsChecking(t *testing.T) {
	w, client, runner := setupWorkflow(t)
	client.PutBool(params.KeyIsOffroad, true)

	var states []types.UpdateState
	w.StateChanged.Connect(func(s types.UpdateState) { states = append(states, s) })

	if err := w.Check(); err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if w.State() != types.UpdateChecking {
		t.Fatalf("Expected checking, got %s", w.State())
	}
	if !client.Watching(client.PathOf(params.KeyLastUpdateTime)) ||
		!client.Watching(client.PathOf(params.KeyUpdateFailedCount)) {
		t.Error("Both update keys should be watched while checking")
	}
	if len(runner.commands) != 1 || runner.commands[0] != "pkill -1 -f selfdrive.updated" {
		t.Errorf("Unexpected updater commands: %v", runner.commands)
	}

	labels := w.Labels()
	if labels.Button != ButtonChecking || labels.ButtonEnabled {
		t.Errorf("Expected disabled CHECKING button, got %q enabled=%v", labels.Button, labels.ButtonEnabled)
	}
	if len(states) != 1 || states[0] != types.UpdateChecking {
		t.Errorf("Unexpected state signals: %v", states)
	}

	if err := w.Check(); err != ErrAlreadyChecking {
		t.Errorf("Second Check() = %v, want ErrAlreadyChecking", err)
	}
}

// ===== Resolution =====

func TestZeroFailureCountKeepsChecking(t *testing.T) {
	w, client, _ := setupWorkflow(t)
	client.PutBool(params.KeyIsOffroad, true)
	if err := w.Check(); err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	client.PutString(params.KeyUpdateFailedCount, "0")

	if w.State() != types.UpdateChecking {
		t.Errorf("Expected checking, got %s", w.State())
	}
}

func TestFailureCountResolvesFailed(t *testing.T) {
	w, client, _ := setupWorkflow(t)
	client.PutBool(params.KeyIsOffroad, true)
	if err := w.Check(); err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	client.PutString(params.KeyUpdateFailedCount, "1")

	if w.State() != types.UpdateFailed {
		t.Fatalf("Expected failed, got %s", w.State())
	}
	labels := w.Labels()
	if labels.Status != FailedText {
		t.Errorf("Expected failure text, got %q", labels.Status)
	}
	if labels.Button != ButtonCheck || !labels.ButtonEnabled {
		t.Errorf("Button should be re-enabled, got %q enabled=%v", labels.Button, labels.ButtonEnabled)
	}
	if client.Watching(client.PathOf(params.KeyUpdateFailedCount)) {
		t.Error("Watchers should be removed after resolution")
	}
}

func TestUpdateTimeResolvesSucceeded(t *testing.T) {
	w, client, _ := setupWorkflow(t)
	client.PutBool(params.KeyIsOffroad, true)
	if err := w.Check(); err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	client.PutString(params.KeyLastUpdateTime, "2021-03-01T11:55:00")

	if w.State() != types.UpdateSucceeded {
		t.Fatalf("Expected succeeded, got %s", w.State())
	}
	labels := w.Labels()
	if labels.LastUpdate != "5 minutes ago" {
		t.Errorf("Expected \"5 minutes ago\", got %q", labels.LastUpdate)
	}
	if labels.Status != "" {
		t.Errorf("Status should be empty, got %q", labels.Status)
	}

	// A fresh check is allowed after success
	if err := w.Check(); err != nil {
		t.Errorf("Check() after success failed: %v", err)
	}
}

func TestFailureWinsOverTimeChange(t *testing.T) {
	w, client, _ := setupWorkflow(t)
	client.PutBool(params.KeyIsOffroad, true)
	client.PutString(params.KeyUpdateFailedCount, "2")
	if err := w.Check(); err != nil {
		t.Fatalf("Check() failed: %v", err)
	}

	client.PutString(params.KeyLastUpdateTime, "2021-03-01T11:59:50")

	if w.State() != types.UpdateFailed {
		t.Errorf("Expected failed, got %s", w.State())
	}
}

// ===== Labels =====

func TestLabelsFromStore(t *testing.T) {
	client := params.NewClient(params.NewMemoryEngine(), logger.Discard())
	client.PutString(params.KeyGitBranch, "release2\n")
	client.PutString(params.KeyGitCommit, "0123456789abcdef")
	client.PutString(params.KeyVersion, "0.8.2-release-extra-long")
	client.PutString(params.KeyReleaseNotes, "  Fixes  \n")

	w := NewWorkflow(client, client, &mockRunner{}, logger.Discard(), Options{Brand: "openpilot", OSVersion: "NEOS 17"})
	if err := w.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	labels := w.Labels()
	if labels.Branch != "release2" {
		t.Errorf("Branch = %q", labels.Branch)
	}
	if labels.Commit != "0123456789" {
		t.Errorf("Commit = %q", labels.Commit)
	}
	if labels.Version != "openpilot v0.8.2-release-" {
		t.Errorf("Version = %q", labels.Version)
	}
	if labels.ReleaseNotes != "Fixes" {
		t.Errorf("ReleaseNotes = %q", labels.ReleaseNotes)
	}
	if labels.OSVersion != "NEOS 17" {
		t.Errorf("OSVersion = %q", labels.OSVersion)
	}
	if labels.LastUpdate != "" {
		t.Errorf("LastUpdate should be empty without a timestamp, got %q", labels.LastUpdate)
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-20 * time.Second), "now"},
		{"minutes", now.Add(-10 * time.Minute), "10 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timeAgo(tt.t, now); got != tt.want {
				t.Errorf("timeAgo() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseUpdateTime(t *testing.T) {
	if _, ok := parseUpdateTime("2021-03-01T11:55:00.123456"); !ok {
		t.Error("Expected naive timestamp to parse")
	}
	if _, ok := parseUpdateTime("2021-03-01T11:55:00Z"); !ok {
		t.Error("Expected RFC3339 timestamp to parse")
	}
	if _, ok := parseUpdateTime("garbage"); ok {
		t.Error("Expected garbage to fail")
	}
}
