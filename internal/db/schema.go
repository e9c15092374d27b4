package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    email         TEXT,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'infrastructure', 'areas', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS categories (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS articles (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    category_id INTEGER NOT NULL REFERENCES categories(id),
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    image       BLOB,
    image_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE TABLE IF NOT EXISTS requests (
    id               INTEGER PRIMARY KEY,
    reference        TEXT NOT NULL UNIQUE,
    event_name       TEXT NOT NULL,
    requester_id     INTEGER NOT NULL REFERENCES users(id),
    start_date       TEXT NOT NULL,
    start_time       TEXT NOT NULL DEFAULT '',
    end_date         TEXT NOT NULL,
    end_time         TEXT NOT NULL DEFAULT '',
    delivery_contact TEXT NOT NULL DEFAULT '',
    notes            TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    decided_by       INTEGER REFERENCES users(id),
    decided_at       DATETIME,
    decision_comment TEXT NOT NULL DEFAULT '',
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS request_items (
    id           INTEGER PRIMARY KEY,
    request_id   INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
    article_id   INTEGER NOT NULL REFERENCES articles(id),
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    observations TEXT NOT NULL DEFAULT '',
    released     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS loading_windows (
    id         INTEGER PRIMARY KEY,
    article_id INTEGER NOT NULL REFERENCES articles(id),
    start_at   DATETIME NOT NULL,
    end_at     DATETIME NOT NULL,
    notes      TEXT NOT NULL DEFAULT '',
    created_by INTEGER REFERENCES users(id),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS repairs (
    id              INTEGER PRIMARY KEY,
    article_id      INTEGER NOT NULL REFERENCES articles(id),
    asset_tag       TEXT NOT NULL DEFAULT '',
    work_order      TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'evaluation' CHECK (status IN ('evaluation', 'finalized')),
    revision        INTEGER NOT NULL CHECK (revision > 0),
    repaired_count  INTEGER NOT NULL DEFAULT 0,
    discarded_count INTEGER NOT NULL DEFAULT 0,
    created_by      INTEGER REFERENCES users(id),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    finalized_at    DATETIME
);

-- handovers.repair_id is a plain integer: the originating repair row
-- is deleted once fully resolved, while handovers remain as history.
CREATE TABLE IF NOT EXISTS handovers (
    id          INTEGER PRIMARY KEY,
    repair_id   INTEGER NOT NULL,
    article_id  INTEGER NOT NULL REFERENCES articles(id),
    asset_tag   TEXT NOT NULL DEFAULT '',
    disposition TEXT NOT NULL CHECK (disposition IN ('repaired', 'discarded', 'leftover')),
    notes       TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS delivery_records (
    id                  INTEGER PRIMARY KEY,
    request_id          INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
    article_id          INTEGER NOT NULL REFERENCES articles(id),
    phase               TEXT NOT NULL CHECK (phase IN ('handoff', 'receipt')),
    recipient_name      TEXT NOT NULL,
    operator_name       TEXT NOT NULL DEFAULT '',
    operator_phone      TEXT NOT NULL DEFAULT '',
    checklist           TEXT NOT NULL,
    signature           BLOB,
    signature_mime      TEXT,
    operator_signature  BLOB,
    operator_signature_mime TEXT,
    early_release       INTEGER NOT NULL DEFAULT 0,
    created_by          INTEGER REFERENCES users(id),
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (request_id, article_id, phase)
);

CREATE TABLE IF NOT EXISTS reminders (
    request_id INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
    milestone  TEXT NOT NULL,
    pool       TEXT NOT NULL,
    sent_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    recipients TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (request_id, milestone, pool)
);

CREATE TABLE IF NOT EXISTS notification_pools (
    id         INTEGER PRIMARY KEY,
    kind       TEXT NOT NULL CHECK (kind IN ('general', 'infrastructure', 'areas', 'furniture')),
    email      TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
