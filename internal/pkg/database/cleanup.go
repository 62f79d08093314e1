package database

import (
	"context"
)

// Cleanup removes states older than the retention period and reports how
// many rows went.
func (db *Database) Cleanup(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, "DELETE FROM light_state WHERE time_stamp < $1", db.now().Add(-db.retention))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
