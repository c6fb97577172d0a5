package relations

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pairroom/internal/dbx"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Relation, error) {
	query :=
		`SELECT member_id, kind FROM user_relations
		 WHERE user_id = $1
		 ORDER BY created_at, member_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Relation
	for rows.Next() {
		var rel models.Relation
		if err := rows.Scan(&rel.MemberID, &rel.Kind); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Has(ctx context.Context, userID, memberID string, kind models.RelationKind) (bool, error) {
	query :=
		`SELECT EXISTS (
			SELECT 1 FROM user_relations WHERE user_id = $1 AND member_id = $2 AND kind = $3
		 )`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, memberID, string(kind)).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, memberID string, kind models.RelationKind) (bool, error) {
	n, err := r.exec(ctx,
		`INSERT INTO user_relations (user_id, member_id, kind)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		userID, memberID, string(kind))
	return n > 0, err
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, memberID string, kind models.RelationKind) (bool, error) {
	n, err := r.exec(ctx,
		`DELETE FROM user_relations WHERE user_id = $1 AND member_id = $2 AND kind = $3`,
		userID, memberID, string(kind))
	return n > 0, err
}

func (r *PostgresRepository) RemoveInvitations(ctx context.Context, userID, memberID string) (int64, error) {
	return r.exec(ctx,
		`DELETE FROM user_relations WHERE user_id = $1 AND member_id = $2 AND kind IN ('sent', 'received')`,
		userID, memberID)
}
