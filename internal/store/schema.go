package store

// schemaSQL is the base schema DDL. modernc.org/sqlite stores embeddings
// as opaque BLOBs, since the pure-Go driver carries no vec0 extension (see
// vector.go); the vector width is checked in Go by Store.UpsertCard.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS cards (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	flow               TEXT NOT NULL,
	title              TEXT NOT NULL,
	content            TEXT NOT NULL,
	card_type          TEXT NOT NULL,
	source_files       TEXT NOT NULL DEFAULT '[]',
	source_repos       TEXT NOT NULL DEFAULT '[]',
	tags               TEXT NOT NULL DEFAULT '[]',
	identifiers        TEXT NOT NULL DEFAULT '',
	valid_branches     TEXT,
	commit_sha         TEXT,
	stale              INTEGER NOT NULL DEFAULT 0,
	usage_count        INTEGER NOT NULL DEFAULT 0,
	specificity_score  REAL NOT NULL DEFAULT 0,
	heat_score         REAL NOT NULL DEFAULT 0,
	tier               TEXT NOT NULL DEFAULT 'structural',
	verified_at        DATETIME,
	verification_count INTEGER NOT NULL DEFAULT 0,
	content_hash       TEXT NOT NULL,
	updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cards_flow ON cards(flow);
CREATE INDEX IF NOT EXISTS idx_cards_content_hash ON cards(content_hash);
CREATE INDEX IF NOT EXISTS idx_cards_stale ON cards(stale);

CREATE TABLE IF NOT EXISTS card_embeddings (
	card_id   INTEGER PRIMARY KEY REFERENCES cards(id) ON DELETE CASCADE,
	dims      INTEGER NOT NULL,
	embedding BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS card_title_embeddings (
	card_id   INTEGER PRIMARY KEY REFERENCES cards(id) ON DELETE CASCADE,
	dims      INTEGER NOT NULL,
	embedding BLOB NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS cards_fts USING fts5(
	title, content, flow, source_repos, tags, identifiers,
	content='cards', content_rowid='id', tokenize='porter'
);

CREATE TABLE IF NOT EXISTS file_index (
	path         TEXT NOT NULL,
	repo         TEXT NOT NULL,
	language     TEXT,
	file_role    TEXT,
	content_hash TEXT,
	branch       TEXT,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (repo, path)
);

CREATE TABLE IF NOT EXISTS graph_edges (
	source_file TEXT NOT NULL,
	target_file TEXT NOT NULL,
	relation    TEXT NOT NULL,
	weight      REAL NOT NULL,
	repo        TEXT,
	metadata    TEXT,
	PRIMARY KEY (source_file, target_file, relation)
);

CREATE TABLE IF NOT EXISTS metrics (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	query           TEXT NOT NULL,
	query_embedding BLOB,
	card_ids        TEXT NOT NULL DEFAULT '[]',
	cache_hit       INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_metrics_created_at ON metrics(created_at);

CREATE TABLE IF NOT EXISTS branch_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	repo        TEXT NOT NULL,
	branch      TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	ticket_id   TEXT,
	context_hint TEXT,
	prev_head   TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_docs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	repo       TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS repo_profiles (
	repo            TEXT PRIMARY KEY,
	default_branch  TEXT,
	gc_in_progress  INTEGER NOT NULL DEFAULT 0,
	last_synced_at  DATETIME,
	last_commit_sha TEXT
);

CREATE TABLE IF NOT EXISTS card_interactions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id    INTEGER NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
	kind       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS instance_profile (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS search_config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// ftsWeights is the per-column BM25 weight vector for cards_fts, in the
// column order the virtual table was created with (spec.md §4.6).
var ftsWeights = []float64{3.0, 1.0, 2.0, 2.0, 1.5, 4.0}
