package store

// DefaultDBPath is the default relative path for the SQLite DB (per-workspace).
// Resolve against cwd; Open() creates the parent dir (e.g. .grantmaster).
const DefaultDBPath = ".grantmaster/grantmaster.db"

// OrganizationProfile describes the applying organization. The table holds at
// most one logical row; saving replaces whatever was there.
type OrganizationProfile struct {
	ID                 int64
	Name               string
	Mission            string
	Projects           string
	Needs              string
	TargetDemographics string
}

// GrantOpportunity is one extracted funding opportunity. Created once after
// extraction; only the analysis fields (notes, score, status) change later.
type GrantOpportunity struct {
	ID               int64
	Title            string
	Funder           string
	Deadline         string
	Description      string
	Eligibility      string
	FocusAreas       string
	RawResearchData  string
	AnalysisNotes    string
	SuitabilityScore float64
	Status           string
}

// SectionDraft is one versioned draft of a named application section.
// Rows are append-only: a redraft inserts a new version, and "latest" is
// derived by max(version) per (grant, section) pair.
type SectionDraft struct {
	ID           int64
	GrantID      int64
	SectionName  string
	DraftContent string
	Version      int
	Feedback     string
}

// Template is a reusable section template. The pipeline itself never reads
// these; they exist for drafting collaborators and the CLI.
type Template struct {
	ID         int64
	Name       string
	Content    string
	UsageNotes string
}

// StatusIdentified is the status a freshly extracted opportunity starts with,
// before analysis replaces it with an analyzed_* status.
const StatusIdentified = "identified"

// Store is the persistence facade: profile, opportunities, section drafts,
// and templates. Pipeline nodes and the CLI use only this interface; the
// implementation is SQLite or in-memory.
type Store interface {
	// Profile (singleton: save replaces the prior row)
	SaveProfile(p *OrganizationProfile) error
	GetProfile() (*OrganizationProfile, error)

	// Opportunities
	SaveOpportunity(g *GrantOpportunity) (id int64, err error)
	UpdateOpportunityAnalysis(id int64, notes string, score float64, status string) error
	GetOpportunity(id int64) (*GrantOpportunity, error)
	ListOpportunities(statusFilter string) ([]*GrantOpportunity, error)

	// Section drafts (append-only, versioned)
	SaveSectionDraft(d *SectionDraft) (id int64, err error)
	GetLatestSectionDraft(grantID int64, sectionName string) (*SectionDraft, error)
	ListLatestSections(grantID int64) ([]*SectionDraft, error)

	// Templates
	SaveTemplate(t *Template) (id int64, err error)
	GetTemplate(id int64) (*Template, error)
	ListTemplates() ([]*Template, error)

	Close() error
}
