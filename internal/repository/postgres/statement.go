package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/hjemly/hjemly/internal/domain/statement"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

type statementRepository struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewStatementRepository(db *storage.Client, logger *logger.Logger) statement.Repository {
	return &statementRepository{db: db, logger: logger}
}

func (r *statementRepository) LatestClosedYear(ctx context.Context, partnerID, accountID string) (int, error) {
	query := `
	SELECT COALESCE(MAX(year), 0)
	FROM annual_statements
	WHERE partner_id = $1 AND account_id = $2 AND finalized = true
	`

	var year int
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &year, query, partnerID, accountID); err != nil {
		return 0, ierr.WithError(err).
			WithHintf("failed to resolve closed year for account %s", accountID).
			Mark(ierr.ErrDatabase)
	}
	return year, nil
}
