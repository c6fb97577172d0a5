package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/dbx"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ErrPinTaken reports a pin collision on Create; callers retry with a fresh pin.
var ErrPinTaken = fmt.Errorf("pin taken: %w", common.ErrorConflict)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `SELECT id, email, username, pin, COALESCE(device_token, ''), COALESCE(profile_image_path, ''),
		has_incoming_call_request, is_busy, version, created_at
	FROM users`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Pin, &u.DeviceToken, &u.ProfileImagePath,
		&u.HasIncomingCallRequest, &u.IsBusy, &u.Version, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, username, pin, device_token)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING id, version, created_at`

	err := r.db.QueryRowContext(ctx, query, user.Email, user.Username, user.Pin, user.DeviceToken).
		Scan(&user.ID, &user.Version, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_pin_key" {
				return nil, ErrPinTaken
			}
			return nil, fmt.Errorf("%w: %s", common.ErrorConflict, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *PostgresRepository) FindByPin(ctx context.Context, pin string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE pin = $1`, pin))
}

func (r *PostgresRepository) Lock(ctx context.Context, id string) error {
	var locked string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) BumpVersion(ctx context.Context, id string) (int64, error) {
	query :=
		`UPDATE users SET version = version + 1
		 WHERE id = $1
		 RETURNING version`

	var version int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}

// setField updates one column and bumps the document version in the same
// statement.
func (r *PostgresRepository) setField(ctx context.Context, query, id string, v any) error {
	if err := dbx.ExecOne(ctx, r.db, query, id, v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetBusy(ctx context.Context, id string, busy bool) error {
	return r.setField(ctx, `UPDATE users SET is_busy = $2, version = version + 1 WHERE id = $1`, id, busy)
}

func (r *PostgresRepository) SetIncomingCall(ctx context.Context, id string, incoming bool) error {
	return r.setField(ctx, `UPDATE users SET has_incoming_call_request = $2, version = version + 1 WHERE id = $1`, id, incoming)
}

func (r *PostgresRepository) SetDeviceToken(ctx context.Context, id string, token string) error {
	return r.setField(ctx, `UPDATE users SET device_token = NULLIF($2, ''), version = version + 1 WHERE id = $1`, id, token)
}

func (r *PostgresRepository) SetProfileImage(ctx context.Context, id string, key string) error {
	return r.setField(ctx, `UPDATE users SET profile_image_path = NULLIF($2, ''), version = version + 1 WHERE id = $1`, id, key)
}
