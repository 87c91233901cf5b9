package tools

import (
	"context"
	"errors"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

type fakeDurableStore struct {
	manifests   map[string]*models.ToolManifest
	permissions map[string][]*models.ToolPermission
	executions  map[string]*models.ToolExecutionLog
	discovery   map[string]*models.ToolDiscoveryRequest
}

func newFakeDurableStore() *fakeDurableStore {
	return &fakeDurableStore{
		manifests:   make(map[string]*models.ToolManifest),
		permissions: make(map[string][]*models.ToolPermission),
		executions:  make(map[string]*models.ToolExecutionLog),
		discovery:   make(map[string]*models.ToolDiscoveryRequest),
	}
}

func (f *fakeDurableStore) Profiles() ports.UserProfileRepository       { return nil }
func (f *fakeDurableStore) Preferences() ports.UserPreferenceRepository { return nil }
func (f *fakeDurableStore) Episodic() ports.EpisodicLogRepository      { return nil }
func (f *fakeDurableStore) Metadata() ports.MemoryMetadataRepository   { return nil }
func (f *fakeDurableStore) Manifests() ports.ManifestRepository        { return fakeManifestRepo{f} }
func (f *fakeDurableStore) Permissions() ports.PermissionRepository    { return fakePermissionRepo{f} }
func (f *fakeDurableStore) Executions() ports.ExecutionLogRepository   { return fakeExecutionRepo{f} }
func (f *fakeDurableStore) Volumes() ports.VolumeRepository            { return nil }
func (f *fakeDurableStore) Discovery() ports.DiscoveryQueueRepository  { return fakeDiscoveryRepo{f} }
func (f *fakeDurableStore) ToolStates() ports.ToolStateRepository      { return nil }
func (f *fakeDurableStore) ClearAll(_ context.Context, _ bool) error   { return nil }

type fakeManifestRepo struct{ s *fakeDurableStore }

func (r fakeManifestRepo) Create(_ context.Context, m *models.ToolManifest) error {
	r.s.manifests[m.ID] = m
	return nil
}

func (r fakeManifestRepo) GetByID(_ context.Context, id string) (*models.ToolManifest, error) {
	m, ok := r.s.manifests[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r fakeManifestRepo) GetByName(_ context.Context, name string) (*models.ToolManifest, error) {
	for _, m := range r.s.manifests {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (r fakeManifestRepo) Update(_ context.Context, m *models.ToolManifest) error {
	r.s.manifests[m.ID] = m
	return nil
}

func (r fakeManifestRepo) List(_ context.Context, status models.ManifestStatus, limit, offset int) ([]*models.ToolManifest, error) {
	var out []*models.ToolManifest
	for _, m := range r.s.manifests {
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type fakePermissionRepo struct{ s *fakeDurableStore }

func (r fakePermissionRepo) Upsert(_ context.Context, p *models.ToolPermission) error {
	list := r.s.permissions[p.ManifestID]
	for i, existing := range list {
		if existing.Kind == p.Kind {
			list[i] = p
			return nil
		}
	}
	r.s.permissions[p.ManifestID] = append(list, p)
	return nil
}

func (r fakePermissionRepo) ListByManifest(_ context.Context, manifestID string) ([]*models.ToolPermission, error) {
	return r.s.permissions[manifestID], nil
}

type fakeExecutionRepo struct{ s *fakeDurableStore }

func (r fakeExecutionRepo) Create(_ context.Context, l *models.ToolExecutionLog) error {
	r.s.executions[l.ID] = l
	return nil
}

func (r fakeExecutionRepo) Complete(_ context.Context, l *models.ToolExecutionLog) error {
	existing, ok := r.s.executions[l.ID]
	if !ok {
		return errors.New("not found")
	}
	if existing.IsTerminal() {
		return errors.New("already completed")
	}
	r.s.executions[l.ID] = l
	return nil
}

func (r fakeExecutionRepo) GetByID(_ context.Context, id string) (*models.ToolExecutionLog, error) {
	l, ok := r.s.executions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return l, nil
}

func (r fakeExecutionRepo) ListByManifest(_ context.Context, manifestID string, limit int) ([]*models.ToolExecutionLog, error) {
	var out []*models.ToolExecutionLog
	for _, l := range r.s.executions {
		if l.ManifestID == manifestID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeDiscoveryRepo struct{ s *fakeDurableStore }

func (r fakeDiscoveryRepo) Create(_ context.Context, req *models.ToolDiscoveryRequest) error {
	r.s.discovery[req.ID] = req
	return nil
}

func (r fakeDiscoveryRepo) Update(_ context.Context, req *models.ToolDiscoveryRequest) error {
	r.s.discovery[req.ID] = req
	return nil
}

func (r fakeDiscoveryRepo) GetByID(_ context.Context, id string) (*models.ToolDiscoveryRequest, error) {
	req, ok := r.s.discovery[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return req, nil
}

func (r fakeDiscoveryRepo) ListPending(_ context.Context) ([]*models.ToolDiscoveryRequest, error) {
	var out []*models.ToolDiscoveryRequest
	for _, req := range r.s.discovery {
		if req.Status == models.DiscoveryPending || req.Status == models.DiscoverySearching {
			out = append(out, req)
		}
	}
	return out, nil
}
