package store

import (
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and dry runs. It mirrors the
// SQLite semantics: singleton profile, auto-assigned ids, append-only
// versioned sections.
type MemStore struct {
	mu sync.Mutex

	profile       *OrganizationProfile
	opportunities map[int64]*GrantOpportunity
	sections      []*SectionDraft
	templates     map[int64]*Template

	nextOppID      int64
	nextSectionID  int64
	nextTemplateID int64

	// FailSaves forces SaveOpportunity/SaveSectionDraft to fail; used to
	// exercise persistence-error paths.
	FailSaves bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		opportunities:  make(map[int64]*GrantOpportunity),
		templates:      make(map[int64]*Template),
		nextOppID:      1,
		nextSectionID:  1,
		nextTemplateID: 1,
	}
}

func (m *MemStore) Close() error { return nil }

func (m *MemStore) SaveProfile(p *OrganizationProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.ID = 1
	m.profile = &cp
	p.ID = cp.ID
	return nil
}

func (m *MemStore) GetProfile() (*OrganizationProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, nil
	}
	cp := *m.profile
	return &cp, nil
}

func (m *MemStore) SaveOpportunity(g *GrantOpportunity) (int64, error) {
	if g == nil {
		return 0, fmt.Errorf("opportunity is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves {
		return 0, fmt.Errorf("memstore: save disabled")
	}
	cp := *g
	cp.ID = m.nextOppID
	if cp.Status == "" {
		cp.Status = StatusIdentified
	}
	m.nextOppID++
	m.opportunities[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MemStore) UpdateOpportunityAnalysis(id int64, notes string, score float64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.opportunities[id]
	if !ok {
		return fmt.Errorf("opportunity %d not found", id)
	}
	g.AnalysisNotes = notes
	g.SuitabilityScore = score
	g.Status = status
	return nil
}

func (m *MemStore) GetOpportunity(id int64) (*GrantOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.opportunities[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *MemStore) ListOpportunities(statusFilter string) ([]*GrantOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*GrantOpportunity
	for _, g := range m.opportunities {
		if statusFilter != "" && g.Status != statusFilter {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) SaveSectionDraft(d *SectionDraft) (int64, error) {
	if d == nil {
		return 0, fmt.Errorf("section draft is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves {
		return 0, fmt.Errorf("memstore: save disabled")
	}
	cp := *d
	cp.ID = m.nextSectionID
	if cp.Version < 1 {
		cp.Version = 1
	}
	m.nextSectionID++
	m.sections = append(m.sections, &cp)
	return cp.ID, nil
}

func (m *MemStore) GetLatestSectionDraft(grantID int64, sectionName string) (*SectionDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *SectionDraft
	for _, d := range m.sections {
		if d.GrantID != grantID || d.SectionName != sectionName {
			continue
		}
		if best == nil || d.Version > best.Version {
			best = d
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *MemStore) ListLatestSections(grantID int64) ([]*SectionDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[string]*SectionDraft)
	for _, d := range m.sections {
		if d.GrantID != grantID {
			continue
		}
		if cur, ok := latest[d.SectionName]; !ok || d.Version > cur.Version {
			latest[d.SectionName] = d
		}
	}
	var out []*SectionDraft
	for _, d := range latest {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionName < out[j].SectionName })
	return out, nil
}

func (m *MemStore) SaveTemplate(t *Template) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("template is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.ID = m.nextTemplateID
	m.nextTemplateID++
	m.templates[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MemStore) GetTemplate(id int64) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MemStore) ListTemplates() ([]*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Template
	for _, t := range m.templates {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
