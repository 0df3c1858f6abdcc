// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 2
)

// Schema creates the snapshot tables. Conversation ids are only unique per
// backend, so the key includes base_url.
const Schema = `
CREATE TABLE IF NOT EXISTS conversations (
	position   INTEGER NOT NULL,
	id         TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	base_url   TEXT NOT NULL,
	PRIMARY KEY (base_url, id)
);

CREATE INDEX IF NOT EXISTS idx_conversations_position ON conversations(base_url, position);

CREATE TABLE IF NOT EXISTS history (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	entry      TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// migrations[v] upgrades a version v database to v+1. Version 1 keyed
// conversations by id alone; the snapshot is a cache, so it is rebuilt.
var migrations = map[int]string{
	1: `DROP TABLE IF EXISTS conversations;`,
}
