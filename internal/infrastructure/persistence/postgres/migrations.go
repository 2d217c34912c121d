package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE DOCUMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- One JSON document per user per concern (progress, tasks, pet, team, ...).
CREATE TABLE IF NOT EXISTS study_documents (
    concern VARCHAR(32) NOT NULL,
    doc_key VARCHAR(255) NOT NULL,
    data JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (concern, doc_key),
    CONSTRAINT valid_concern CHECK (concern IN ('progress', 'tasks', 'pet', 'team', 'team_roster', 'challenge'))
);

CREATE INDEX IF NOT EXISTS idx_study_documents_updated_at ON study_documents(updated_at DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS study_documents;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: UPDATED_AT TRIGGER
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE OR REPLACE FUNCTION touch_study_documents()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_study_documents_touch ON study_documents;
CREATE TRIGGER trg_study_documents_touch
    BEFORE UPDATE ON study_documents
    FOR EACH ROW EXECUTE FUNCTION touch_study_documents();
`

const migration002Down = `
DROP TRIGGER IF EXISTS trg_study_documents_touch ON study_documents;
DROP FUNCTION IF EXISTS touch_study_documents();
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_study_documents",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "touch_study_documents",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
