package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// sequenceTables maps an entity table to the single-row counter table backing it.
var sequenceTables = map[string]string{
	"bands": "bands_sequence",
}

// NextSequence bumps and returns the counter for table, so the first band stored is #1.
//
// Sequences break ties between bands with the same lowercased name, keeping store order stable across reads.
func NextSequence(db *sql.DB, table string) (int, error) {
	counter, ok := sequenceTables[table]
	if !ok {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var next int
	err := db.QueryRow(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", counter)).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("sequence %s is not initialized", counter)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	return next, nil
}
