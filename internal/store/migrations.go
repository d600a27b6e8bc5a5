package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create sessions and messages",
		SQL: `
			CREATE TABLE sessions (
				id                TEXT PRIMARY KEY,
				topic             TEXT NOT NULL,
				rounds            INTEGER NOT NULL,
				max_duration_mins INTEGER NOT NULL,
				status            TEXT NOT NULL,
				progress          REAL NOT NULL DEFAULT 0,
				participant_ids   TEXT NOT NULL,
				moderator_id      TEXT NOT NULL DEFAULT '',
				moderator_prompt  TEXT NOT NULL DEFAULT '',
				conclusion        TEXT,
				created_at        TEXT NOT NULL,
				updated_at        TEXT NOT NULL
			);

			CREATE INDEX idx_sessions_status ON sessions (status);
			CREATE INDEX idx_sessions_created ON sessions (created_at);

			CREATE TABLE messages (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				speaker_id   TEXT NOT NULL,
				speaker_name TEXT NOT NULL,
				speaker_role TEXT NOT NULL DEFAULT '',
				round        INTEGER NOT NULL,
				content      TEXT NOT NULL,
				timestamp    TEXT NOT NULL
			);

			CREATE INDEX idx_messages_session ON messages (session_id, id);
		`,
	},
}
