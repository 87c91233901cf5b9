// Package tools implements the C8 tool repository service and C10 tool
// discovery service.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// RepositoryService (C8) is the CRUD + lifecycle layer over tool
// manifests, permissions, and execution logs, grounded on
// validatePayloadJSONAgainstSchema's compile-then-validate idiom for
// parameter schema enforcement. Tool state and volumes are not handled
// here; they are reached through the DurableStore's own repositories.
type RepositoryService struct {
	durable ports.DurableStore
	ids     *idgen.Generator
}

func NewRepositoryService(durable ports.DurableStore) *RepositoryService {
	return &RepositoryService{durable: durable, ids: idgen.New()}
}

func (s *RepositoryService) CreateManifest(ctx context.Context, m *models.ToolManifest) error {
	if len(m.ParameterSchema) > 0 {
		if _, err := compileParameterSchema(m.ParameterSchema); err != nil {
			return fmt.Errorf("invalid parameter schema: %w", err)
		}
	}
	return s.durable.Manifests().Create(ctx, m)
}

func (s *RepositoryService) GetManifest(ctx context.Context, id string) (*models.ToolManifest, error) {
	return s.durable.Manifests().GetByID(ctx, id)
}

func (s *RepositoryService) GetManifestByName(ctx context.Context, name string) (*models.ToolManifest, error) {
	return s.durable.Manifests().GetByName(ctx, name)
}

func (s *RepositoryService) ListManifests(ctx context.Context, status models.ManifestStatus, limit, offset int) ([]*models.ToolManifest, error) {
	return s.durable.Manifests().List(ctx, status, limit, offset)
}

func (s *RepositoryService) transition(ctx context.Context, id string, status models.ManifestStatus) (*models.ToolManifest, error) {
	m, err := s.durable.Manifests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.durable.Manifests().Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *RepositoryService) Approve(ctx context.Context, id string) (*models.ToolManifest, error) {
	return s.transition(ctx, id, models.ManifestApproved)
}

func (s *RepositoryService) Activate(ctx context.Context, id string) (*models.ToolManifest, error) {
	return s.transition(ctx, id, models.ManifestActive)
}

func (s *RepositoryService) Disable(ctx context.Context, id string) (*models.ToolManifest, error) {
	return s.transition(ctx, id, models.ManifestDisabled)
}

func (s *RepositoryService) Revoke(ctx context.Context, id string) (*models.ToolManifest, error) {
	return s.transition(ctx, id, models.ManifestRevoked)
}

func (s *RepositoryService) SetPermission(ctx context.Context, manifestID string, kind models.PermissionKind, value, grantor string) error {
	existing, _ := findPermission(ctx, s.durable, manifestID, kind)
	id := s.ids.GeneratePermissionID()
	if existing != nil {
		id = existing.ID
	}
	perm := &models.ToolPermission{
		ID: id, ManifestID: manifestID, Kind: kind, Value: value, Grantor: grantor,
	}
	return s.durable.Permissions().Upsert(ctx, perm)
}

func findPermission(ctx context.Context, durable ports.DurableStore, manifestID string, kind models.PermissionKind) (*models.ToolPermission, error) {
	perms, err := durable.Permissions().ListByManifest(ctx, manifestID)
	if err != nil {
		return nil, err
	}
	for _, p := range perms {
		if p.Kind == kind {
			return p, nil
		}
	}
	return nil, nil
}

func (s *RepositoryService) ListPermissions(ctx context.Context, manifestID string) ([]*models.ToolPermission, error) {
	return s.durable.Permissions().ListByManifest(ctx, manifestID)
}

// StartExecution validates params against the manifest's parameter schema
// (when one is present) before creating the running execution log row.
func (s *RepositoryService) StartExecution(ctx context.Context, manifestID, conversationID string, params map[string]any) (*models.ToolExecutionLog, error) {
	manifest, err := s.durable.Manifests().GetByID(ctx, manifestID)
	if err != nil {
		return nil, err
	}
	if !manifest.Executable() {
		return nil, fmt.Errorf("manifest %s is not executable in status %s", manifestID, manifest.Status)
	}
	if len(manifest.ParameterSchema) > 0 {
		if err := validateParams(manifest.ParameterSchema, params); err != nil {
			return nil, fmt.Errorf("parameter validation failed: %w", err)
		}
	}

	log := models.NewToolExecutionLog(s.ids.GenerateExecutionLogID(), manifestID, params)
	log.ConversationID = conversationID
	if err := s.durable.Executions().Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *RepositoryService) CompleteExecution(ctx context.Context, log *models.ToolExecutionLog) error {
	return s.durable.Executions().Complete(ctx, log)
}

func (s *RepositoryService) ListExecutions(ctx context.Context, manifestID string, limit int) ([]*models.ToolExecutionLog, error) {
	return s.durable.Executions().ListByManifest(ctx, manifestID, limit)
}

func compileParameterSchema(schemaBytes []byte) (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile("schema.json")
}

func validateParams(schemaBytes []byte, params map[string]any) error {
	schema, err := compileParameterSchema(schemaBytes)
	if err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	var paramsDoc any
	if err := json.Unmarshal(paramsJSON, &paramsDoc); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}
	return schema.Validate(paramsDoc)
}

var _ ports.ToolRepositoryService = (*RepositoryService)(nil)
