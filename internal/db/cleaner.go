package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartRevokedTokenCleaner removes revocation records of tokens that have
// expired anyway, once per interval, until ctx is cancelled.
func StartRevokedTokenCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM revoked_tokens
                     WHERE expires_at < $1
                `, time.Now().UTC())
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error("failed to clean revoked tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned revoked tokens", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
