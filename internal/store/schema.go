package store

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = 1

// schemaV1 mirrors the four-table application schema. grant_templates is
// unused by the pipeline itself; it belongs to drafting collaborators.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS organization_profile (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	name                TEXT,
	mission             TEXT,
	projects            TEXT,
	needs               TEXT,
	target_demographics TEXT
);

CREATE TABLE IF NOT EXISTS grant_opportunities (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	grant_title       TEXT,
	funder            TEXT,
	deadline          TEXT,
	description       TEXT,
	eligibility       TEXT,
	focus_areas       TEXT,
	raw_research_data TEXT,
	analysis_notes    TEXT,
	suitability_score REAL,
	status            TEXT DEFAULT 'identified'
);

CREATE TABLE IF NOT EXISTS grant_application_sections (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	grant_opportunity_id INTEGER NOT NULL REFERENCES grant_opportunities(id),
	section_name         TEXT NOT NULL,
	draft_content        TEXT,
	version              INTEGER NOT NULL DEFAULT 1,
	feedback             TEXT
);

CREATE INDEX IF NOT EXISTS idx_sections_grant_name
	ON grant_application_sections(grant_opportunity_id, section_name, version);

CREATE TABLE IF NOT EXISTS grant_templates (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	template_name TEXT,
	content       TEXT,
	usage_notes   TEXT
);
`
