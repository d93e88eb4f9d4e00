package vault

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/dmitrijs2005/jobcoach/internal/cryptox"
	"github.com/dmitrijs2005/jobcoach/internal/dbx"
)

type SQLiteVault struct {
	db  *sql.DB
	key []byte
}

func NewSQLiteVault(db *sql.DB, key []byte) *SQLiteVault {
	return &SQLiteVault{db: db, key: key}
}

func (v *SQLiteVault) Set(ctx context.Context, tokens models.Tokens) error {
	if !tokens.Complete() {
		return &VaultError{Op: "set", Err: ErrIncompleteTokens}
	}

	slots := []struct {
		key   string
		value string
	}{
		{common.VaultAccessTokenKey, tokens.AccessToken},
		{common.VaultRefreshTokenKey, tokens.RefreshToken},
	}

	err := dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, s := range slots {
			ct, nonce, err := cryptox.Seal(v.key, []byte(s.value), []byte(s.key))
			if err != nil {
				return fmt.Errorf("seal %s: %w", s.key, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO credentials (key, value, nonce, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, nonce = excluded.nonce, updated_at = excluded.updated_at
			`, s.key, ct, nonce)
			if err != nil {
				return fmt.Errorf("write %s: %w", s.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &VaultError{Op: "set", Err: err}
	}
	return nil
}

func (v *SQLiteVault) Get(ctx context.Context) (models.Tokens, error) {
	rows, err := v.db.QueryContext(ctx, `SELECT key, value, nonce FROM credentials WHERE key IN (?, ?)`,
		common.VaultAccessTokenKey, common.VaultRefreshTokenKey)
	if err != nil {
		return models.Tokens{}, &VaultError{Op: "get", Err: err}
	}
	defer rows.Close()

	values := make(map[string]string, 2)
	for rows.Next() {
		var key string
		var ct, nonce []byte
		if err := rows.Scan(&key, &ct, &nonce); err != nil {
			return models.Tokens{}, &VaultError{Op: "get", Err: err}
		}
		pt, err := cryptox.Open(v.key, ct, nonce, []byte(key))
		if err != nil {
			return models.Tokens{}, &VaultError{Op: "get", Err: fmt.Errorf("%w: open %s: %v", ErrVaultCorrupt, key, err)}
		}
		values[key] = string(pt)
	}
	if err := rows.Err(); err != nil {
		return models.Tokens{}, &VaultError{Op: "get", Err: err}
	}

	tokens := models.Tokens{
		AccessToken:  values[common.VaultAccessTokenKey],
		RefreshToken: values[common.VaultRefreshTokenKey],
	}
	switch {
	case len(values) == 0:
		return models.Tokens{}, nil
	case !tokens.Complete():
		return models.Tokens{}, &VaultError{Op: "get", Err: ErrVaultCorrupt}
	}
	return tokens, nil
}

func (v *SQLiteVault) Clear(ctx context.Context) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM credentials WHERE key IN (?, ?)`,
		common.VaultAccessTokenKey, common.VaultRefreshTokenKey)
	if err != nil {
		return &VaultError{Op: "clear", Err: err}
	}
	return nil
}
