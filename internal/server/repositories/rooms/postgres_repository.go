package rooms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/dbx"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const roomColumns = `id, user_id_1, user_id_2, nickname, last_interaction, is_active`

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(s scanner) (*models.Room, error) {
	room := &models.Room{}
	err := s.Scan(&room.ID, &room.UserID1, &room.UserID2, &room.Nickname, &room.LastInteraction, &room.IsActive)
	return room, err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return room, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
		 WHERE user_id_1 = $1 OR user_id_2 = $1
		 ORDER BY last_interaction DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, room *models.Room) (*models.Room, error) {
	query :=
		`INSERT INTO rooms (id, user_id_1, user_id_2, nickname, last_interaction, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET nickname = EXCLUDED.nickname,
		     last_interaction = EXCLUDED.last_interaction,
		     is_active = EXCLUDED.is_active
		 RETURNING ` + roomColumns

	saved, err := scanRoom(r.db.QueryRowContext(ctx, query,
		room.ID, room.UserID1, room.UserID2, room.Nickname, room.LastInteraction, room.IsActive))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, isActive int) error {
	err := dbx.ExecOne(ctx, r.db, `UPDATE rooms SET is_active = $2 WHERE id = $1`, id, isActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
