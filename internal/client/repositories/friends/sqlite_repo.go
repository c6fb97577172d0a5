package friends

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/dbx"
)

const selectColumns = `id, user_id, email, username, pin, profile_image_path, profile_image_data,
	device_token, is_busy, last_interaction, is_accepted, version`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, f *models.Friend) error {
	query := `INSERT INTO friends (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			username = excluded.username,
			pin = excluded.pin,
			profile_image_path = excluded.profile_image_path,
			profile_image_data = excluded.profile_image_data,
			device_token = excluded.device_token,
			is_busy = excluded.is_busy,
			last_interaction = excluded.last_interaction,
			is_accepted = excluded.is_accepted,
			version = excluded.version`

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.UserID, f.Email, f.Username, f.Pin, f.ProfileImagePath, f.ProfileImageData,
		f.DeviceToken, f.IsBusy, toMillis(f.LastInteraction), f.IsAccepted, f.Version)
	if err != nil {
		return fmt.Errorf("failed to upsert friend %s: %w", f.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) FetchAll(ctx context.Context, ownerUserID string) ([]*models.Friend, error) {
	query := `SELECT ` + selectColumns + ` FROM friends WHERE user_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to select friends: %w", err)
	}
	defer rows.Close()

	var result []*models.Friend
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) FetchOne(ctx context.Context, id string) (*models.Friend, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM friends WHERE id = ?`, id)
	f, err := scanFriend(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM friends WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete friend %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdatePresence(ctx context.Context, id string, isBusy bool, version int64) error {
	err := dbx.ExecOne(ctx, r.db, `UPDATE friends SET is_busy = ?, version = ? WHERE id = ?`, isBusy, version, id)
	return mapNoRows(err, "update presence", id)
}

func (r *SQLiteRepository) UpdateLastInteraction(ctx context.Context, id string, t time.Time) error {
	err := dbx.ExecOne(ctx, r.db, `UPDATE friends SET last_interaction = ? WHERE id = ?`, toMillis(t), id)
	return mapNoRows(err, "update last interaction", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFriend(s scanner) (*models.Friend, error) {
	var (
		f  models.Friend
		ms int64
	)
	err := s.Scan(&f.ID, &f.UserID, &f.Email, &f.Username, &f.Pin, &f.ProfileImagePath, &f.ProfileImageData,
		&f.DeviceToken, &f.IsBusy, &ms, &f.IsAccepted, &f.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan friend: %w", err)
	}
	f.LastInteraction = fromMillis(ms)
	return &f, nil
}

func mapNoRows(err error, op, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s %s: %w", op, id, common.ErrorNotFound)
	default:
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
