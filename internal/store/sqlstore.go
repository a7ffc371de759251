package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullFloat converts a sql.NullFloat64 to a plain float64 (0 if null).
func nullFloat(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

// SqlStore implements Store with SQLite. Writes serialize on the single
// database handle; no transaction ever spans more than one call.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .grantmaster) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *SqlStore) Close() error { return s.db.Close() }

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("db schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return nil
}

// --- Profile ---

// SaveProfile replaces the singleton profile row: delete-then-insert inside
// one transaction, so a failed insert never leaves the table empty.
func (s *SqlStore) SaveProfile(p *OrganizationProfile) error {
	if p == nil {
		return errors.New("profile is nil")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin profile tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM organization_profile"); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	res, err := tx.Exec(
		`INSERT INTO organization_profile(name, mission, projects, needs, target_demographics)
		 VALUES(?, ?, ?, ?, ?)`,
		p.Name, p.Mission, p.Projects, p.Needs, p.TargetDemographics,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func (s *SqlStore) GetProfile() (*OrganizationProfile, error) {
	var p OrganizationProfile
	err := s.db.QueryRow(
		`SELECT id, name, mission, projects, needs, target_demographics
		 FROM organization_profile LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.Mission, &p.Projects, &p.Needs, &p.TargetDemographics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// --- Opportunities ---

func (s *SqlStore) SaveOpportunity(g *GrantOpportunity) (int64, error) {
	if g == nil {
		return 0, errors.New("opportunity is nil")
	}
	if g.Status == "" {
		g.Status = StatusIdentified
	}
	res, err := s.db.Exec(
		`INSERT INTO grant_opportunities(grant_title, funder, deadline, description,
		   eligibility, focus_areas, raw_research_data, analysis_notes, suitability_score, status)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Title, g.Funder, g.Deadline, g.Description,
		g.Eligibility, g.FocusAreas, g.RawResearchData, g.AnalysisNotes, g.SuitabilityScore, g.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert opportunity: %w", err)
	}
	return res.LastInsertId()
}

func (s *SqlStore) UpdateOpportunityAnalysis(id int64, notes string, score float64, status string) error {
	res, err := s.db.Exec(
		`UPDATE grant_opportunities
		 SET analysis_notes = ?, suitability_score = ?, status = ?
		 WHERE id = ?`,
		notes, score, status, id,
	)
	if err != nil {
		return fmt.Errorf("update opportunity analysis: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("opportunity %d not found", id)
	}
	return nil
}

func (s *SqlStore) GetOpportunity(id int64) (*GrantOpportunity, error) {
	row := s.db.QueryRow(
		`SELECT id, grant_title, funder, deadline, description, eligibility,
		   focus_areas, raw_research_data, analysis_notes, suitability_score, status
		 FROM grant_opportunities WHERE id = ?`, id,
	)
	g, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return g, nil
}

func (s *SqlStore) ListOpportunities(statusFilter string) ([]*GrantOpportunity, error) {
	query := `SELECT id, grant_title, funder, deadline, description, eligibility,
	   focus_areas, raw_research_data, analysis_notes, suitability_score, status
	 FROM grant_opportunities`
	args := []any{}
	if statusFilter != "" {
		query += " WHERE status = ?"
		args = append(args, statusFilter)
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var out []*GrantOpportunity
	for rows.Next() {
		g, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(r rowScanner) (*GrantOpportunity, error) {
	var g GrantOpportunity
	var notes, raw sql.NullString
	var score sql.NullFloat64
	err := r.Scan(&g.ID, &g.Title, &g.Funder, &g.Deadline, &g.Description,
		&g.Eligibility, &g.FocusAreas, &raw, &notes, &score, &g.Status)
	if err != nil {
		return nil, err
	}
	g.RawResearchData = nullStr(raw)
	g.AnalysisNotes = nullStr(notes)
	g.SuitabilityScore = nullFloat(score)
	return &g, nil
}

// --- Section drafts ---

func (s *SqlStore) SaveSectionDraft(d *SectionDraft) (int64, error) {
	if d == nil {
		return 0, errors.New("section draft is nil")
	}
	if d.Version < 1 {
		d.Version = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO grant_application_sections(grant_opportunity_id, section_name,
		   draft_content, version, feedback)
		 VALUES(?, ?, ?, ?, ?)`,
		d.GrantID, d.SectionName, d.DraftContent, d.Version, d.Feedback,
	)
	if err != nil {
		return 0, fmt.Errorf("insert section draft: %w", err)
	}
	return res.LastInsertId()
}

func (s *SqlStore) GetLatestSectionDraft(grantID int64, sectionName string) (*SectionDraft, error) {
	var d SectionDraft
	var content, feedback sql.NullString
	err := s.db.QueryRow(
		`SELECT id, grant_opportunity_id, section_name, draft_content, version, feedback
		 FROM grant_application_sections
		 WHERE grant_opportunity_id = ? AND section_name = ?
		 ORDER BY version DESC LIMIT 1`,
		grantID, sectionName,
	).Scan(&d.ID, &d.GrantID, &d.SectionName, &content, &d.Version, &feedback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest section draft: %w", err)
	}
	d.DraftContent = nullStr(content)
	d.Feedback = nullStr(feedback)
	return &d, nil
}

func (s *SqlStore) ListLatestSections(grantID int64) ([]*SectionDraft, error) {
	rows, err := s.db.Query(
		`SELECT t1.id, t1.grant_opportunity_id, t1.section_name, t1.draft_content, t1.version, t1.feedback
		 FROM grant_application_sections t1
		 WHERE t1.version = (
		   SELECT MAX(t2.version)
		   FROM grant_application_sections t2
		   WHERE t2.grant_opportunity_id = t1.grant_opportunity_id
		     AND t2.section_name = t1.section_name
		 )
		 AND t1.grant_opportunity_id = ?
		 ORDER BY t1.section_name`,
		grantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list latest sections: %w", err)
	}
	defer rows.Close()

	var out []*SectionDraft
	for rows.Next() {
		var d SectionDraft
		var content, feedback sql.NullString
		if err := rows.Scan(&d.ID, &d.GrantID, &d.SectionName, &content, &d.Version, &feedback); err != nil {
			return nil, fmt.Errorf("scan section draft: %w", err)
		}
		d.DraftContent = nullStr(content)
		d.Feedback = nullStr(feedback)
		out = append(out, &d)
	}
	return out, rows.Err()
}

// --- Templates ---

func (s *SqlStore) SaveTemplate(t *Template) (int64, error) {
	if t == nil {
		return 0, errors.New("template is nil")
	}
	res, err := s.db.Exec(
		"INSERT INTO grant_templates(template_name, content, usage_notes) VALUES(?, ?, ?)",
		t.Name, t.Content, t.UsageNotes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert template: %w", err)
	}
	return res.LastInsertId()
}

func (s *SqlStore) GetTemplate(id int64) (*Template, error) {
	var t Template
	var notes sql.NullString
	err := s.db.QueryRow(
		"SELECT id, template_name, content, usage_notes FROM grant_templates WHERE id = ?", id,
	).Scan(&t.ID, &t.Name, &t.Content, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	t.UsageNotes = nullStr(notes)
	return &t, nil
}

func (s *SqlStore) ListTemplates() ([]*Template, error) {
	rows, err := s.db.Query("SELECT id, template_name, content, usage_notes FROM grant_templates ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*Template
	for rows.Next() {
		var t Template
		var notes sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &notes); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.UsageNotes = nullStr(notes)
		out = append(out, &t)
	}
	return out, rows.Err()
}
