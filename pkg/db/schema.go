package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per batch invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    source TEXT NOT NULL,
    workers INTEGER NOT NULL DEFAULT 1,
    message_count INTEGER NOT NULL DEFAULT 0,
    orders_count INTEGER NOT NULL DEFAULT 0,
    products_count INTEGER NOT NULL DEFAULT 0,
    text_count INTEGER NOT NULL DEFAULT 0,
    drop_count INTEGER NOT NULL DEFAULT 0,
    out_dir TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Diagnostics: classification, dropped-segment and fallback events
CREATE TABLE IF NOT EXISTS diagnostics (
    diagnostic_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER,
    type TEXT NOT NULL CHECK(type IN ('classified', 'dropped', 'fallback')),
    kind TEXT,                  -- orders, products, text (classified only)
    engine TEXT,                -- orders, products, facade
    segment INTEGER NOT NULL DEFAULT -1,
    reason TEXT,
    snippet TEXT,
    message_hash TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_diagnostics_type ON diagnostics(type);
CREATE INDEX IF NOT EXISTS idx_diagnostics_engine ON diagnostics(engine);
CREATE INDEX IF NOT EXISTS idx_diagnostics_hash ON diagnostics(message_hash);
CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id);
`
