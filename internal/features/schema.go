package features

import (
	"fmt"
	"sort"

	"github.com/Shree2124/NGOStream/internal/domain"
)

const indicatorPrefix = "donationType_"

// Schema fixes the feature layout of the regression model. Categories are
// sorted; the first one is the reference category and has no indicator
// column.
type Schema struct {
	Categories []string `json:"categories"`
	Columns    []string `json:"columns"`
}

// NewSchema derives the one-hot layout from the donation types present in
// buckets.
func NewSchema(buckets []domain.DonationBucket) Schema {
	seen := make(map[string]struct{})
	for _, b := range buckets {
		seen[b.DonationType] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	columns := []string{"year", "month"}
	if len(categories) > 1 {
		for _, c := range categories[1:] {
			columns = append(columns, indicatorPrefix+c)
		}
	}
	return Schema{Categories: categories, Columns: columns}
}

// Width is the number of feature columns.
func (s Schema) Width() int { return len(s.Columns) }

// Reference returns the dropped category, if any.
func (s Schema) Reference() string {
	if len(s.Categories) == 0 {
		return ""
	}
	return s.Categories[0]
}

// Row builds the feature vector for a period and donation type.
func (s Schema) Row(year, month int, donationType string) ([]float64, error) {
	idx := sort.SearchStrings(s.Categories, donationType)
	if idx >= len(s.Categories) || s.Categories[idx] != donationType {
		return nil, fmt.Errorf("%w: donation type %q was not seen during training", domain.ErrSchemaMismatch, donationType)
	}
	row := make([]float64, s.Width())
	row[0] = float64(year)
	row[1] = float64(month)
	if idx > 0 {
		row[1+idx] = 1
	}
	return row, nil
}

// Matrix converts buckets to a feature matrix and target vector.
func (s Schema) Matrix(buckets []domain.DonationBucket) ([][]float64, []float64, error) {
	x := make([][]float64, 0, len(buckets))
	y := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		row, err := s.Row(b.Year, b.Month, b.DonationType)
		if err != nil {
			return nil, nil, err
		}
		x = append(x, row)
		y = append(y, b.Amount)
	}
	return x, y, nil
}
