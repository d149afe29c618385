package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
)

type apiKeysRepo struct {
	db *sql.DB
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, uuid, secret_hash, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		k.ID, k.UUID, k.SecretHash, k.OwnerID, time.Now().UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (r *apiKeysRepo) GetAPIKeyByUUID(ctx context.Context, uuid string) (domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uuid, secret_hash, owner_id, created_at
		FROM api_keys WHERE uuid = ?`, uuid)

	var k domain.APIKey
	if err := row.Scan(&k.ID, &k.UUID, &k.SecretHash, &k.OwnerID, &k.CreatedAt); err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	return k, nil
}

func (r *apiKeysRepo) ListAPIKeysByOwner(ctx context.Context, ownerID string) ([]domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uuid, secret_hash, owner_id, created_at
		FROM api_keys WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID, &k.UUID, &k.SecretHash, &k.OwnerID, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
