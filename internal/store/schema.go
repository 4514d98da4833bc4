package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS definitions (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    amount            TEXT NOT NULL,
    recurrence_months INTEGER NOT NULL,
    first_due         TEXT NOT NULL,
    end_date          TEXT,
    lead_months       INTEGER NOT NULL DEFAULT 0,
    saving            TEXT NOT NULL,
    custom_monthly    TEXT,
    adjustment        TEXT NOT NULL,
    day_pattern       TEXT,
    category_id       TEXT REFERENCES categories(id) ON DELETE SET NULL,
    created_at        TEXT NOT NULL,
    updated_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    amount      TEXT NOT NULL,
    date        TEXT NOT NULL,
    category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS occurrences (
    id              TEXT PRIMARY KEY,
    definition_id   TEXT NOT NULL REFERENCES definitions(id) ON DELETE CASCADE,
    scheduled       TEXT NOT NULL,
    expected_amount TEXT NOT NULL,
    status          TEXT NOT NULL,
    actual_date     TEXT,
    actual_amount   TEXT,
    transaction_id  TEXT REFERENCES transactions(id) ON DELETE SET NULL,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
    id            TEXT PRIMARY KEY,
    definition_id TEXT NOT NULL UNIQUE REFERENCES definitions(id) ON DELETE CASCADE,
    total_saved   TEXT NOT NULL,
    total_paid    TEXT NOT NULL,
    last_year     INTEGER NOT NULL DEFAULT 0,
    last_month    INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_occurrences_definition ON occurrences(definition_id, scheduled);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
