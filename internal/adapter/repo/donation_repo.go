package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/infra"
	"github.com/Shree2124/NGOStream/internal/sqlinline"
)

// DonationRepositoryPG reads donation history from the relational mirror of
// the donations collection.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a Postgres-backed donation source.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// FetchDonations returns every donation as a document shaped like the
// Mongo projection. NULL columns are left out so the usual defaults apply.
func (r *DonationRepositoryPG) FetchDonations(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationHistory)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			createdAt    *time.Time
			amount       *float64
			donationType *string
		)
		if err := rows.Scan(&createdAt, &amount, &donationType); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}

		details := map[string]any{}
		if amount != nil {
			details[domain.FieldAmount] = *amount
		}
		doc := domain.Document{domain.FieldMonetaryDetails: details}
		if createdAt != nil {
			doc[domain.FieldCreatedAt] = *createdAt
		}
		if donationType != nil {
			doc[domain.FieldDonationType] = *donationType
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return docs, nil
}

var _ domain.DonationSource = (*DonationRepositoryPG)(nil)
