package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.LocalUser) error {
	query := `INSERT INTO local_users (id, email, username, pin, device_token, profile_image_path,
			profile_image_data, has_incoming_call_request, is_busy, version, image_offset, room_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			username = excluded.username,
			pin = excluded.pin,
			device_token = excluded.device_token,
			profile_image_path = excluded.profile_image_path,
			profile_image_data = excluded.profile_image_data,
			has_incoming_call_request = excluded.has_incoming_call_request,
			is_busy = excluded.is_busy,
			version = excluded.version`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Username, u.Pin, u.DeviceToken, u.ProfileImagePath,
		u.ProfileImageData, u.HasIncomingCallRequest, u.IsBusy, u.Version, u.ImageOffset, u.RoomName)
	if err != nil {
		return fmt.Errorf("failed to upsert local user %s: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.LocalUser, error) {
	query := `SELECT id, email, username, pin, device_token, profile_image_path, profile_image_data,
			has_incoming_call_request, is_busy, version, image_offset, room_name
		FROM local_users WHERE id = ?`

	var u models.LocalUser
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.Pin, &u.DeviceToken, &u.ProfileImagePath, &u.ProfileImageData,
		&u.HasIncomingCallRequest, &u.IsBusy, &u.Version, &u.ImageOffset, &u.RoomName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local user %s: %w", id, err)
	}

	rels, err := r.Relations(ctx, id)
	if err != nil {
		return nil, err
	}
	u.SetRelations(rels)
	return &u, nil
}

func (r *SQLiteRepository) UpdateBusy(ctx context.Context, id string, isBusy bool) error {
	err := dbx.ExecOne(ctx, r.db, `UPDATE local_users SET is_busy = ? WHERE id = ?`, isBusy, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update busy %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return fmt.Errorf("update busy %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SetLocalPrefs(ctx context.Context, id string, imageOffset float64, roomName string) error {
	err := dbx.ExecOne(ctx, r.db, `UPDATE local_users SET image_offset = ?, room_name = ? WHERE id = ?`,
		imageOffset, roomName, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("set local prefs %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return fmt.Errorf("set local prefs %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Relations(ctx context.Context, id string) ([]models.Relation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT member_id, kind FROM local_user_relations WHERE user_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select relations of %s: %w", id, err)
	}
	defer rows.Close()

	var result []models.Relation
	for rows.Next() {
		var rel models.Relation
		if err := rows.Scan(&rel.MemberID, &rel.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relations: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) AddRelation(ctx context.Context, id string, rel models.Relation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO local_user_relations (user_id, member_id, kind) VALUES (?, ?, ?)
		ON CONFLICT(user_id, member_id, kind) DO NOTHING`, id, rel.MemberID, string(rel.Kind))
	if err != nil {
		return fmt.Errorf("failed to add %s relation %s->%s: %w", rel.Kind, id, rel.MemberID, err)
	}
	return nil
}

func (r *SQLiteRepository) RemoveRelation(ctx context.Context, id string, rel models.Relation) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM local_user_relations WHERE user_id = ? AND member_id = ? AND kind = ?`,
		id, rel.MemberID, string(rel.Kind))
	if err != nil {
		return fmt.Errorf("failed to remove %s relation %s->%s: %w", rel.Kind, id, rel.MemberID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM local_users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete local user %s: %w", id, err)
	}
	return nil
}
