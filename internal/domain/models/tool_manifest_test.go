package models

import "testing"

func TestToolManifest_TransitionTo(t *testing.T) {
	tests := []struct {
		name        string
		from        ManifestStatus
		to          ManifestStatus
		shouldError bool
	}{
		{"pending to approved", ManifestPendingApproval, ManifestApproved, false},
		{"approved to active", ManifestApproved, ManifestActive, false},
		{"approved to disabled", ManifestApproved, ManifestDisabled, false},
		{"disabled back to approved", ManifestDisabled, ManifestApproved, false},
		{"any to revoked", ManifestActive, ManifestRevoked, false},
		{"no-op transition", ManifestApproved, ManifestApproved, false},
		{"revoked is terminal", ManifestRevoked, ManifestApproved, true},
		{"pending cannot jump to active", ManifestPendingApproval, ManifestActive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewToolManifest("amf_1", "calc", "1.0", "a calculator", ManifestSourceLocal, "file://calc.json")
			m.Status = tt.from
			err := m.TransitionTo(tt.to)
			if tt.shouldError && err == nil {
				t.Fatalf("expected error transitioning %s -> %s", tt.from, tt.to)
			}
			if !tt.shouldError && err != nil {
				t.Fatalf("unexpected error transitioning %s -> %s: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestToolManifest_Executable(t *testing.T) {
	m := NewToolManifest("amf_2", "calc", "1.0", "a calculator", ManifestSourceLocal, "file://calc.json")
	if m.Executable() {
		t.Fatal("pending_approval manifest should not be executable")
	}
	if err := m.TransitionTo(ManifestApproved); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Executable() {
		t.Fatal("approved manifest should be executable")
	}
	if err := m.TransitionTo(ManifestRevoked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Executable() {
		t.Fatal("revoked manifest should not be executable")
	}
	if m.RevokedAt == nil {
		t.Fatal("expected RevokedAt to be stamped")
	}
}

func TestToolExecutionLog_Complete(t *testing.T) {
	log := NewToolExecutionLog("axl_1", "amf_1", map[string]any{"x": 1})
	if log.Status != ExecutionRunning {
		t.Fatalf("expected running status, got %s", log.Status)
	}
	code := 0
	log.Complete(ExecutionSuccess, `{"x":1}`, "", &code)
	if !log.IsTerminal() {
		t.Fatal("expected terminal status after Complete")
	}
	if log.EndedAt == nil || log.EndedAt.Before(log.StartedAt) {
		t.Fatal("expected EndedAt >= StartedAt")
	}
	if log.DurationMs < 0 {
		t.Fatalf("expected non-negative duration, got %d", log.DurationMs)
	}
}
