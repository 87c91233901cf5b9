package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// openAPIOperation is the minimal shape this module pulls out of a remote
// OpenAPI document: one capability per path x method.
type openAPIOperation struct {
	Path        string
	Method      string
	Summary     string
	Description string
}

// DiscoveryService (C10) ingests local manifest files and remote OpenAPI
// descriptors into pending_approval manifests. Neither ingestion path
// autopublishes — every manifest it produces still needs an operator
// Approve call through RepositoryService.
type DiscoveryService struct {
	durable    ports.DurableStore
	llm        ports.LLMService
	httpClient *http.Client
	ids        *idgen.Generator
}

func NewDiscoveryService(durable ports.DurableStore, llm ports.LLMService) *DiscoveryService {
	return &DiscoveryService{
		durable:    durable,
		llm:        llm,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		ids:        idgen.New(),
	}
}

// DiscoverFromFile reads a local JSON manifest describing one tool
// (name/version/description/capabilities/parameter schema/execution
// config) and registers it pending approval.
func (s *DiscoveryService) DiscoverFromFile(ctx context.Context, path string) (*models.ToolManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest file: %w", err)
	}

	var doc struct {
		Name            string                 `json:"name"`
		Version         string                 `json:"version"`
		Description     string                 `json:"description"`
		Capabilities    []models.Capability     `json:"capabilities"`
		ParameterSchema json.RawMessage         `json:"parameter_schema"`
		Execution       models.ExecutionConfig  `json:"execution"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest file: %w", err)
	}

	manifest := models.NewToolManifest(s.ids.GenerateManifestID(), doc.Name, doc.Version, doc.Description, models.ManifestSourceLocal, path)
	manifest.Capabilities = doc.Capabilities
	manifest.Execution = doc.Execution
	if len(doc.ParameterSchema) > 0 {
		manifest.ParameterSchema = []byte(doc.ParameterSchema)
	}

	if err := s.durable.Manifests().Create(ctx, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// DiscoverFromOpenAPI fetches a remote OpenAPI document and normalises it
// into a pending manifest: one capability per path x method when no LM is
// configured, or an LM-synthesised capability list when one is.
func (s *DiscoveryService) DiscoverFromOpenAPI(ctx context.Context, url string) (*models.ToolManifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build openapi request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch openapi document: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}

	var doc openAPIDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}

	ops := extractOperations(doc)

	var capabilities []models.Capability
	if s.llm != nil && s.llm.Configured() {
		capabilities = s.normaliseWithLLM(ctx, doc.Info.Title, ops)
	}
	if len(capabilities) == 0 {
		capabilities = syntacticCapabilities(ops)
	}

	manifest := models.NewToolManifest(s.ids.GenerateManifestID(), doc.Info.Title, doc.Info.Version, doc.Info.Description, models.ManifestSourceOpenAPIURL, url)
	manifest.Capabilities = capabilities

	if err := s.durable.Manifests().Create(ctx, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// RequestCapability enqueues a discovery request for a capability the
// executor couldn't resolve; it never blocks on an actual search — that
// is left to an operator or a future background worker draining
// ListPending.
func (s *DiscoveryService) RequestCapability(ctx context.Context, description, requester string) (*models.ToolDiscoveryRequest, error) {
	req := models.NewToolDiscoveryRequest(s.ids.GenerateDiscoveryRequestID(), description, requester)
	if err := s.durable.Discovery().Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

type openAPIDocument struct {
	Info struct {
		Title       string `json:"title"`
		Version     string `json:"version"`
		Description string `json:"description"`
	} `json:"info"`
	Paths map[string]map[string]struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
	} `json:"paths"`
}

func extractOperations(doc openAPIDocument) []openAPIOperation {
	var ops []openAPIOperation
	for path, methods := range doc.Paths {
		for method, op := range methods {
			ops = append(ops, openAPIOperation{Path: path, Method: method, Summary: op.Summary, Description: op.Description})
		}
	}
	return ops
}

func syntacticCapabilities(ops []openAPIOperation) []models.Capability {
	caps := make([]models.Capability, 0, len(ops))
	for _, op := range ops {
		name := op.Method + " " + op.Path
		desc := op.Summary
		if desc == "" {
			desc = op.Description
		}
		if desc == "" {
			desc = name
		}
		caps = append(caps, models.Capability{Name: name, Description: desc})
	}
	return caps
}

// normaliseWithLLM asks the language model to turn the raw path/method
// list into a coherent capability summary; on any failure it returns nil
// so the caller falls back to the syntactic list.
func (s *DiscoveryService) normaliseWithLLM(ctx context.Context, title string, ops []openAPIOperation) []models.Capability {
	prompt := fmt.Sprintf("Summarise the capabilities of the %q API given these operations: %+v. Respond with one capability per line as 'name: description'.", title, ops)
	resp, err := s.llm.StructuredChat(ctx, []ports.LLMMessage{{Role: "user", Content: prompt}}, "one capability per line as 'name: description'")
	if err != nil || resp == nil || resp.Content == "" {
		return nil
	}
	return parseCapabilityLines(resp.Content)
}

func parseCapabilityLines(content string) []models.Capability {
	var caps []models.Capability
	for _, line := range strings.Split(content, "\n") {
		name, desc, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name, desc = strings.TrimSpace(name), strings.TrimSpace(desc)
		if name == "" {
			continue
		}
		caps = append(caps, models.Capability{Name: name, Description: desc})
	}
	return caps
}

var _ ports.ToolDiscoveryService = (*DiscoveryService)(nil)
