package features

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Shree2124/NGOStream/internal/domain"
)

func TestNewSchemaDropsReferenceCategory(t *testing.T) {
	buckets := []domain.DonationBucket{
		{Year: 2024, Month: 1, DonationType: "C"},
		{Year: 2024, Month: 1, DonationType: "A"},
		{Year: 2024, Month: 2, DonationType: "B"},
		{Year: 2024, Month: 3, DonationType: "A"},
	}
	s := NewSchema(buckets)
	if s.Reference() != "A" {
		t.Fatalf("Reference() = %q, want A", s.Reference())
	}
	wantColumns := []string{"year", "month", "donationType_B", "donationType_C"}
	if !reflect.DeepEqual(s.Columns, wantColumns) {
		t.Fatalf("Columns = %v, want %v", s.Columns, wantColumns)
	}
	indicators := s.Width() - 2
	if indicators != 2 {
		t.Fatalf("expected 2 indicator columns for 3 types, got %d", indicators)
	}
}

func TestSchemaRow(t *testing.T) {
	s := NewSchema([]domain.DonationBucket{{DonationType: "A"}, {DonationType: "B"}, {DonationType: "C"}})

	tests := []struct {
		kind string
		want []float64
	}{
		{"A", []float64{2025, 1, 0, 0}},
		{"B", []float64{2025, 1, 1, 0}},
		{"C", []float64{2025, 1, 0, 1}},
	}
	for _, tc := range tests {
		got, err := s.Row(2025, 1, tc.kind)
		if err != nil {
			t.Fatalf("Row(%q) returned error: %v", tc.kind, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Row(%q) = %v, want %v", tc.kind, got, tc.want)
		}
	}

	if _, err := s.Row(2025, 1, "D"); !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch for unseen category, got %v", err)
	}
}

func TestSchemaSingleCategory(t *testing.T) {
	s := NewSchema([]domain.DonationBucket{{Year: 2024, Month: 1, DonationType: "cash", Amount: 3}})
	if s.Width() != 2 {
		t.Fatalf("Width() = %d, want 2", s.Width())
	}
	x, y, err := s.Matrix([]domain.DonationBucket{{Year: 2024, Month: 1, DonationType: "cash", Amount: 3}})
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	if !reflect.DeepEqual(x, [][]float64{{2024, 1}}) || !reflect.DeepEqual(y, []float64{3}) {
		t.Fatalf("Matrix = %v, %v", x, y)
	}
}
