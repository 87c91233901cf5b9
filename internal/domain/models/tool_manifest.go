package models

import (
	"fmt"
	"time"
)

// ManifestSource is where a manifest's definition came from.
type ManifestSource string

const (
	ManifestSourceLocal      ManifestSource = "local"
	ManifestSourceOpenAPIURL ManifestSource = "openapi_url"
	ManifestSourceDiscovered ManifestSource = "discovered"
)

// ManifestStatus is the tool lifecycle state.
type ManifestStatus string

const (
	ManifestPendingApproval ManifestStatus = "pending_approval"
	ManifestApproved        ManifestStatus = "approved"
	ManifestActive          ManifestStatus = "active"
	ManifestDisabled        ManifestStatus = "disabled"
	ManifestRevoked         ManifestStatus = "revoked"
)

// manifestTransition mirrors the teacher's ConversationTransition pattern:
// a (from, to) pair keying a fixed table of legal moves.
type manifestTransition struct {
	From ManifestStatus
	To   ManifestStatus
}

var validManifestTransitions = map[manifestTransition]bool{
	{ManifestPendingApproval, ManifestApproved}: true,
	{ManifestApproved, ManifestActive}:          true,
	{ManifestApproved, ManifestDisabled}:        true,
	{ManifestDisabled, ManifestApproved}:        true,
	{ManifestActive, ManifestDisabled}:          true,

	{ManifestPendingApproval, ManifestRevoked}: true,
	{ManifestApproved, ManifestRevoked}:        true,
	{ManifestActive, ManifestRevoked}:          true,
	{ManifestDisabled, ManifestRevoked}:        true,
}

// ValidateManifestTransition reports whether moving a manifest from one
// status to another is legal, mirroring the teacher's conversation status
// transition validator.
func ValidateManifestTransition(from, to ManifestStatus) error {
	if from == to {
		return nil
	}
	if !validManifestTransitions[manifestTransition{from, to}] {
		return &InvalidManifestTransitionError{From: from, To: to}
	}
	return nil
}

// InvalidManifestTransitionError reports an illegal manifest status move.
type InvalidManifestTransitionError struct {
	From ManifestStatus
	To   ManifestStatus
}

func (e *InvalidManifestTransitionError) Error() string {
	return fmt.Sprintf("invalid tool manifest transition from '%s' to '%s'", e.From, e.To)
}

// ExecutionConfig describes how a manifest's tool runs inside the sandbox.
type ExecutionConfig struct {
	Type       string   `json:"type,omitempty"`
	Image      string   `json:"container_image"`
	Entrypoint []string `json:"entrypoint"`
	TimeoutSec int      `json:"timeout_seconds"`
}

// Capability is one thing a tool manifest claims it can do.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolManifest is the persistent declaration of a tool.
type ToolManifest struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Version          string         `json:"version"`
	Description      string         `json:"description"`
	Source           ManifestSource `json:"source"`
	SourceLocator    string         `json:"source_locator"`
	Status           ManifestStatus `json:"status"`
	SchemaPayload    []byte         `json:"schema_payload,omitempty"`
	Capabilities     []Capability   `json:"capabilities"`
	ParameterSchema  []byte         `json:"parameter_schema,omitempty"`
	Execution        ExecutionConfig `json:"execution"`
	ApprovedAt       *time.Time     `json:"approved_at,omitempty"`
	RevokedAt        *time.Time     `json:"revoked_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func NewToolManifest(id, name, version, description string, source ManifestSource, locator string) *ToolManifest {
	now := time.Now().UTC()
	return &ToolManifest{
		ID:            id,
		Name:          name,
		Version:       version,
		Description:   description,
		Source:        source,
		SourceLocator: locator,
		Status:        ManifestPendingApproval,
		Capabilities:  make([]Capability, 0),
		Execution:     ExecutionConfig{TimeoutSec: 30},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TransitionTo validates and applies a status change, stamping
// ApprovedAt/RevokedAt as appropriate.
func (m *ToolManifest) TransitionTo(status ManifestStatus) error {
	if err := ValidateManifestTransition(m.Status, status); err != nil {
		return err
	}
	now := time.Now().UTC()
	m.Status = status
	m.UpdatedAt = now
	switch status {
	case ManifestApproved:
		m.ApprovedAt = &now
	case ManifestRevoked:
		m.RevokedAt = &now
	}
	return nil
}

// Executable reports whether the manifest is eligible for execution.
func (m *ToolManifest) Executable() bool {
	return m.Status == ManifestApproved || m.Status == ManifestActive
}

// PermissionKind enumerates the recognised permission grants.
type PermissionKind string

const (
	PermissionInternetAccess PermissionKind = "internet_access"
	PermissionStorageQuota   PermissionKind = "storage_quota"
	PermissionCPUCap         PermissionKind = "cpu_cap"
	PermissionMemoryCap      PermissionKind = "memory_cap"
)

// ToolPermission is upserted on (ManifestID, Kind).
type ToolPermission struct {
	ID         string         `json:"id"`
	ManifestID string         `json:"manifest_id"`
	Kind       PermissionKind `json:"kind"`
	Value      string         `json:"value"`
	Grantor    string         `json:"grantor"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ExecutionStatus is the terminal (or running) state of a ToolExecutionLog.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionSuccess   ExecutionStatus = "success"
	ExecutionFailure   ExecutionStatus = "failure"
	ExecutionTimeout   ExecutionStatus = "timeout"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// ToolExecutionLog records a single tool invocation. Created running,
// updated exactly once on completion, then frozen.
type ToolExecutionLog struct {
	ID             string          `json:"id"`
	ManifestID     string          `json:"manifest_id"`
	ConversationID string          `json:"conversation_id,omitempty"`
	TurnIndex      *int            `json:"turn_index,omitempty"`
	InputParams    map[string]any  `json:"input_params"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        *time.Time      `json:"ended_at,omitempty"`
	DurationMs     int64           `json:"duration_ms"`
	Status         ExecutionStatus `json:"status"`
	Output         string          `json:"output,omitempty"`
	Error          string          `json:"error,omitempty"`
	ExitCode       *int            `json:"exit_code,omitempty"`
	CPUPercent     float64         `json:"cpu_percent"`
	PeakMemoryMB   int64           `json:"peak_memory_mb"`
	ContainerRef   string          `json:"container_ref,omitempty"`
}

func NewToolExecutionLog(id, manifestID string, params map[string]any) *ToolExecutionLog {
	return &ToolExecutionLog{
		ID:          id,
		ManifestID:  manifestID,
		InputParams: params,
		StartedAt:   time.Now().UTC(),
		Status:      ExecutionRunning,
	}
}

// Complete freezes the log with a terminal status; safe to call exactly
// once per invariant (§3, §8: end >= start; duration = end - start).
func (l *ToolExecutionLog) Complete(status ExecutionStatus, output, errMsg string, exitCode *int) {
	now := time.Now().UTC()
	if now.Before(l.StartedAt) {
		now = l.StartedAt
	}
	l.EndedAt = &now
	l.DurationMs = now.Sub(l.StartedAt).Milliseconds()
	l.Status = status
	l.Output = output
	l.Error = errMsg
	l.ExitCode = exitCode
}

func (l *ToolExecutionLog) IsTerminal() bool {
	return l.Status != ExecutionRunning
}

// ToolVolume is a per-manifest persistent named volume.
type ToolVolume struct {
	ID         string    `json:"id"`
	ManifestID string    `json:"manifest_id"`
	Name       string    `json:"name"`
	MountPath  string    `json:"mount_path"`
	QuotaMB    int       `json:"quota_mb"`
	CreatedAt  time.Time `json:"created_at"`
}

// DiscoveryStatus is the lifecycle of a ToolDiscoveryRequest.
type DiscoveryStatus string

const (
	DiscoveryPending   DiscoveryStatus = "pending"
	DiscoverySearching DiscoveryStatus = "searching"
	DiscoveryFound     DiscoveryStatus = "found"
	DiscoveryFailed    DiscoveryStatus = "failed"
	DiscoveryRejected  DiscoveryStatus = "rejected"
)

// ToolDiscoveryRequest tracks an in-flight ask for a capability the
// executor couldn't find a manifest for.
type ToolDiscoveryRequest struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Requester      string          `json:"requester"`
	Status         DiscoveryStatus `json:"status"`
	ResolvedManifestID string      `json:"resolved_manifest_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewToolDiscoveryRequest(id, description, requester string) *ToolDiscoveryRequest {
	now := time.Now().UTC()
	return &ToolDiscoveryRequest{
		ID:          id,
		Description: description,
		Requester:   requester,
		Status:      DiscoveryPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
