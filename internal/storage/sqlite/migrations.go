package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Friends must be created BEFORE expenses due to the foreign key constraint.
// Balances and amounts are stored as TEXT so decimals round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS friends (
    position INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    avatar_url TEXT NOT NULL,
    balance TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    position INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    id TEXT NOT NULL UNIQUE,
    friend_id TEXT NOT NULL,
    bill_total TEXT NOT NULL,
    payer_share TEXT NOT NULL,
    payer TEXT NOT NULL,
    delta TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (friend_id) REFERENCES friends(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_friends_session_id ON friends(session_id);
CREATE INDEX IF NOT EXISTS idx_expenses_friend_id ON expenses(session_id, friend_id);
`

// purge removes rows left behind by a previous process. Sessions never
// outlive the process that created them.
const purge = `
DELETE FROM expenses;
DELETE FROM friends;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(purge)
	return err
}
