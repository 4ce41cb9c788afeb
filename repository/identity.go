package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"clubauction/models"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// identityColumns splits an identity into its kind/ref columns. The zero
// identity maps to two NULLs.
func identityColumns(id models.BidderIdentity) (*string, *string) {
	if id.IsZero() {
		return nil, nil
	}
	kind := string(id.Kind)
	ref := id.Ref
	return &kind, &ref
}

func identityFromColumns(kind, ref *string) (models.BidderIdentity, error) {
	if kind == nil || ref == nil {
		return models.BidderIdentity{}, nil
	}
	id, err := models.NewBidderIdentity(models.BidderKind(*kind), *ref)
	if err != nil {
		return models.BidderIdentity{}, fmt.Errorf("corrupt bidder identity: %w", err)
	}
	return id, nil
}
