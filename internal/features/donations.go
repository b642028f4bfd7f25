// Package features turns raw donation documents into model-ready rows,
// buckets, and feature matrices.
package features

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Shree2124/NGOStream/internal/domain"
)

// RequiredDonationFields must each appear in at least one record.
var RequiredDonationFields = []string{
	domain.FieldCreatedAt,
	domain.FieldMonetaryDetails,
	domain.FieldDonationType,
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// CleanDonations validates the record set and converts each usable record
// into a DonationRow. Records with a missing or unparseable createdAt are
// dropped.
func CleanDonations(docs []domain.Document) ([]domain.DonationRow, error) {
	if err := checkSchema(docs); err != nil {
		return nil, err
	}

	rows := make([]domain.DonationRow, 0, len(docs))
	for _, doc := range docs {
		createdAt, ok := ParseTimestamp(doc[domain.FieldCreatedAt])
		if !ok {
			continue
		}
		rows = append(rows, newRow(createdAt, amountOf(doc), donationTypeOf(doc)))
	}
	return rows, nil
}

func checkSchema(docs []domain.Document) error {
	for _, field := range RequiredDonationFields {
		found := false
		for _, doc := range docs {
			if _, ok := doc[field]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: missing required field: %s", domain.ErrValidation, field)
		}
	}
	return nil
}

func newRow(createdAt time.Time, amount float64, donationType string) domain.DonationRow {
	weekday := (int(createdAt.Weekday()) + 6) % 7
	return domain.DonationRow{
		CreatedAt:    createdAt,
		Amount:       amount,
		DonationType: donationType,
		Year:         createdAt.Year(),
		Month:        int(createdAt.Month()),
		Day:          createdAt.Day(),
		DayOfWeek:    weekday,
		Quarter:      (int(createdAt.Month())-1)/3 + 1,
	}
}

// ParseTimestamp coerces a stored createdAt value. Numbers are Unix
// milliseconds.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case int64:
		return time.UnixMilli(t).UTC(), true
	case int32:
		return time.UnixMilli(int64(t)).UTC(), true
	case int:
		return time.UnixMilli(int64(t)).UTC(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// CoerceAmount converts a stored amount into a float. Anything that is not
// a finite number becomes 0.
func CoerceAmount(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func amountOf(doc domain.Document) float64 {
	details, ok := doc[domain.FieldMonetaryDetails].(map[string]any)
	if !ok {
		return 0
	}
	raw, ok := details[domain.FieldAmount]
	if !ok {
		return 0
	}
	return CoerceAmount(raw)
}

func donationTypeOf(doc domain.Document) string {
	switch v := doc[domain.FieldDonationType].(type) {
	case nil:
		return domain.UnknownDonationType
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

type bucketKey struct {
	year, month  int
	donationType string
}

// Aggregate sums amounts by (year, month, donationType). The result is
// sorted by that key.
func Aggregate(rows []domain.DonationRow) []domain.DonationBucket {
	sums := make(map[bucketKey]float64)
	for _, row := range rows {
		sums[bucketKey{row.Year, row.Month, row.DonationType}] += row.Amount
	}

	buckets := make([]domain.DonationBucket, 0, len(sums))
	for k, amount := range sums {
		buckets = append(buckets, domain.DonationBucket{
			Year:         k.year,
			Month:        k.month,
			DonationType: k.donationType,
			Amount:       amount,
		})
	}
	SortBuckets(buckets)
	return buckets
}

// SortBuckets orders buckets by (year, month, donationType).
func SortBuckets(buckets []domain.DonationBucket) {
	sort.Slice(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.DonationType < b.DonationType
	})
}

// MonthlyTotals sums buckets by (year, month), sorted.
func MonthlyTotals(buckets []domain.DonationBucket) []domain.MonthlyTotal {
	type monthKey struct{ year, month int }
	sums := make(map[monthKey]float64)
	for _, b := range buckets {
		sums[monthKey{b.Year, b.Month}] += b.Amount
	}
	totals := make([]domain.MonthlyTotal, 0, len(sums))
	for k, amount := range sums {
		totals = append(totals, domain.MonthlyTotal{Year: k.year, Month: k.month, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Month < totals[j].Month
	})
	return totals
}

// Latest returns the most recent bucket by (year, month), ties broken by
// donation type. The input order is irrelevant.
func Latest(buckets []domain.DonationBucket) (domain.DonationBucket, bool) {
	if len(buckets) == 0 {
		return domain.DonationBucket{}, false
	}
	sorted := append([]domain.DonationBucket(nil), buckets...)
	SortBuckets(sorted)
	return sorted[len(sorted)-1], true
}

// RollForward returns the month after (year, month).
func RollForward(year, month int) (int, int) {
	month++
	if month > 12 {
		return year + 1, 1
	}
	return year, month
}

// NextPeriod returns the period following the most recent bucket together
// with that bucket's donation type.
func NextPeriod(buckets []domain.DonationBucket) (year, month int, donationType string, ok bool) {
	latest, ok := Latest(buckets)
	if !ok {
		return 0, 0, "", false
	}
	year, month = RollForward(latest.Year, latest.Month)
	return year, month, latest.DonationType, true
}
