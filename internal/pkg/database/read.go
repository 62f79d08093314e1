package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

const stateColumns = `time_stamp, name, uuid, kind, state, attributes`

// GetStateHistory returns up to limit states of the light with uuid, newest
// first.
func (db *Database) GetStateHistory(ctx context.Context, uuid model.Identifier, limit int) ([]model.StateSnapshot, error) {
	rows, err := db.pool.Query(ctx, `
	SELECT `+stateColumns+`
	FROM light_state
	WHERE uuid = $1
	ORDER BY time_stamp DESC
	LIMIT $2;
	`, uuid.String(), limit)
	if err != nil {
		return nil, err
	}
	return scanStates(rows)
}

// GetLatestStates returns the newest stored state of every light.
func (db *Database) GetLatestStates(ctx context.Context) ([]model.StateSnapshot, error) {
	rows, err := db.pool.Query(ctx, `
	SELECT DISTINCT ON (uuid) `+stateColumns+`
	FROM light_state
	ORDER BY uuid, time_stamp DESC;
	`)
	if err != nil {
		return nil, err
	}
	return scanStates(rows)
}

func scanStates(rows pgx.Rows) ([]model.StateSnapshot, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.StateSnapshot, error) {
		var (
			s    model.StateSnapshot
			uuid string
		)
		if err := row.Scan(&s.Timestamp, &s.Name, &uuid, &s.Kind, &s.State, &s.Attributes); err != nil {
			return s, err
		}
		s.UUID = model.Identifier(uuid)
		return s, nil
	})
}
