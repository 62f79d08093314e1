package database

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

func (db *Database) Write(ctx context.Context, data []model.StateSnapshot) error {
	batch := &pgx.Batch{}
	for _, s := range data {
		attrs, err := json.Marshal(s.Attributes)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO light_state (time_stamp, name, uuid, kind, state, attributes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.Timestamp, s.Name, s.UUID.String(), s.Kind, s.State, attrs)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (db *Database) RegisterDevice(light model.Light) error {
	_, err := db.pool.Exec(context.Background(), `
		INSERT INTO light (uuid, name, kind, room)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uuid) DO UPDATE
		SET name = EXCLUDED.name, kind = EXCLUDED.kind, room = EXCLUDED.room, updated_at = now();`,
		light.UUID.String(), light.Name, light.Kind, light.Room)
	return err
}
