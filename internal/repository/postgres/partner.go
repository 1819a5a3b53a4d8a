package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/hjemly/hjemly/internal/domain/partner"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

type partnerRepository struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewPartnerRepository(db *storage.Client, logger *logger.Logger) partner.Repository {
	return &partnerRepository{db: db, logger: logger}
}

func (r *partnerRepository) GetByPartnerID(ctx context.Context, partnerID string) (*partner.Setting, error) {
	query := `SELECT data FROM partner_settings WHERE partner_id = $1`

	var data []byte
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &data, query, partnerID)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("partner setting not found").
			WithHintf("no setting for partner %s", partnerID).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load setting for partner %s", partnerID).
			Mark(ierr.ErrDatabase)
	}

	var s partner.Setting
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to deserialize partner setting").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}
