package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Stylesheets: last successful download per URL
CREATE TABLE IF NOT EXISTS stylesheets (
    stylesheet_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    content TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    provider BOOLEAN NOT NULL DEFAULT 0,  -- served by the recognized font provider
    face_count INTEGER DEFAULT 0,
    formats TEXT,                         -- JSON array: ["woff2","woff"]
    fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_stylesheets_provider ON stylesheets(provider);
CREATE INDEX IF NOT EXISTS idx_stylesheets_fetched ON stylesheets(fetched_at);

-- Fetch attempts: every download tracked, failed ones included
CREATE TABLE IF NOT EXISTS fetch_attempts (
    attempt_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    attempted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attempts_url ON fetch_attempts(url);
CREATE INDEX IF NOT EXISTS idx_attempts_success ON fetch_attempts(success);
`
