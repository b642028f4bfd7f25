package features

import (
	"github.com/Shree2124/NGOStream/internal/domain"
)

const dateLayout = "2006-01-02"

// TrendPoints returns one dated point per donation with a parseable
// createdAt, a monetaryDetails object and a positive amount. Input order is
// kept.
func TrendPoints(docs []domain.Document) []domain.DonationPoint {
	points := make([]domain.DonationPoint, 0, len(docs))
	for _, doc := range docs {
		createdAt, ok := ParseTimestamp(doc[domain.FieldCreatedAt])
		if !ok {
			continue
		}
		details, ok := doc[domain.FieldMonetaryDetails].(map[string]any)
		if !ok {
			continue
		}
		amount := CoerceAmount(details[domain.FieldAmount])
		if amount <= 0 {
			continue
		}
		points = append(points, domain.DonationPoint{
			Date:   createdAt.Format(dateLayout),
			Amount: amount,
		})
	}
	return points
}

// PointTotals rolls trend points up to calendar months.
func PointTotals(points []domain.DonationPoint) []domain.MonthlyTotal {
	buckets := make([]domain.DonationBucket, 0, len(points))
	for _, p := range points {
		day, ok := ParseTimestamp(p.Date)
		if !ok {
			continue
		}
		buckets = append(buckets, domain.DonationBucket{
			Year:   day.Year(),
			Month:  int(day.Month()),
			Amount: p.Amount,
		})
	}
	return MonthlyTotals(buckets)
}
