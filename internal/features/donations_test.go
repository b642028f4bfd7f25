package features

import (
	"errors"
	"testing"
	"time"

	"github.com/Shree2124/NGOStream/internal/domain"
)

func donation(createdAt any, amount any, donationType any) domain.Document {
	doc := domain.Document{
		domain.FieldCreatedAt:    createdAt,
		domain.FieldDonationType: donationType,
	}
	if amount != nil {
		doc[domain.FieldMonetaryDetails] = map[string]any{domain.FieldAmount: amount}
	} else {
		doc[domain.FieldMonetaryDetails] = map[string]any{}
	}
	return doc
}

func TestCleanDonationsDropsRecordsWithoutCreatedAt(t *testing.T) {
	docs := []domain.Document{
		donation("2024-01-15", 100, "cash"),
		{domain.FieldMonetaryDetails: map[string]any{domain.FieldAmount: 5000}, domain.FieldDonationType: "cash"},
		donation("not a date", 700, "cash"),
	}
	rows, err := CleanDonations(docs)
	if err != nil {
		t.Fatalf("CleanDonations returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	buckets := Aggregate(rows)
	if len(buckets) != 1 || buckets[0].Amount != 100 {
		t.Fatalf("unexpected buckets: %#v", buckets)
	}
}

func TestCleanDonationsDefaults(t *testing.T) {
	docs := []domain.Document{
		donation("2024-03-01", nil, nil),
		donation("2024-03-02", "abc", "kind"),
		{domain.FieldCreatedAt: "2024-03-03", domain.FieldMonetaryDetails: "oops", domain.FieldDonationType: "cash"},
		donation("2024-03-04", "12.5", "cash"),
	}
	rows, err := CleanDonations(docs)
	if err != nil {
		t.Fatalf("CleanDonations returned error: %v", err)
	}
	want := []struct {
		amount float64
		kind   string
	}{
		{0, domain.UnknownDonationType},
		{0, "kind"},
		{0, "cash"},
		{12.5, "cash"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Amount != w.amount || rows[i].DonationType != w.kind {
			t.Fatalf("row %d = (%v, %q), want (%v, %q)", i, rows[i].Amount, rows[i].DonationType, w.amount, w.kind)
		}
	}
}

func TestCleanDonationsMissingFieldEverywhere(t *testing.T) {
	for _, field := range RequiredDonationFields {
		t.Run(field, func(t *testing.T) {
			doc := donation("2024-01-15", 100, "cash")
			delete(doc, field)
			_, err := CleanDonations([]domain.Document{doc})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCleanDonationsFieldPresentInSomeRecord(t *testing.T) {
	docs := []domain.Document{
		{domain.FieldCreatedAt: "2024-01-15"},
		{domain.FieldMonetaryDetails: map[string]any{domain.FieldAmount: 1}, domain.FieldDonationType: "cash"},
	}
	rows, err := CleanDonations(docs)
	if err != nil {
		t.Fatalf("CleanDonations returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Amount != 0 || rows[0].DonationType != domain.UnknownDonationType {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestCalendarFields(t *testing.T) {
	// 2024-08-18 is a Sunday.
	rows, err := CleanDonations([]domain.Document{donation(time.Date(2024, 8, 18, 10, 0, 0, 0, time.UTC), 1, "cash")})
	if err != nil {
		t.Fatalf("CleanDonations returned error: %v", err)
	}
	r := rows[0]
	if r.Year != 2024 || r.Month != 8 || r.Day != 18 || r.DayOfWeek != 6 || r.Quarter != 3 {
		t.Fatalf("unexpected calendar fields: %#v", r)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   any
		ok   bool
		want time.Time
	}{
		{"date only", "2024-01-15", true, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-01-15T10:30:00Z", true, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"fractional", "2024-01-15T10:30:00.123Z", true, time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)},
		{"space separated", "2024-01-15 10:30:00", true, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"unix millis", int64(1705314600000), true, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"garbage", "yesterday", false, time.Time{}},
		{"empty", "  ", false, time.Time{}},
		{"nil", nil, false, time.Time{}},
		{"bool", true, false, time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParseTimestamp(%v) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("ParseTimestamp(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAggregateAndMonthlyTotals(t *testing.T) {
	docs := []domain.Document{
		donation("2024-01-15", 100, "cash"),
		donation("2024-02-10", 200, "cash"),
	}
	rows, err := CleanDonations(docs)
	if err != nil {
		t.Fatalf("CleanDonations returned error: %v", err)
	}
	buckets := Aggregate(rows)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	totals := MonthlyTotals(buckets)
	want := []domain.MonthlyTotal{{Year: 2024, Month: 1, Amount: 100}, {Year: 2024, Month: 2, Amount: 200}}
	if len(totals) != len(want) {
		t.Fatalf("expected %d totals, got %d", len(want), len(totals))
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Fatalf("totals[%d] = %#v, want %#v", i, totals[i], want[i])
		}
	}
}

func TestAggregateSumsWithinGroup(t *testing.T) {
	rows, err := CleanDonations([]domain.Document{
		donation("2024-05-01", 10, "kind"),
		donation("2024-05-20", 15, "kind"),
		donation("2024-05-21", 7, "cash"),
	})
	if err != nil {
		t.Fatalf("CleanDonations returned error: %v", err)
	}
	buckets := Aggregate(rows)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %#v", buckets)
	}
	if buckets[0].DonationType != "cash" || buckets[0].Amount != 7 {
		t.Fatalf("unexpected first bucket %#v", buckets[0])
	}
	if buckets[1].DonationType != "kind" || buckets[1].Amount != 25 {
		t.Fatalf("unexpected second bucket %#v", buckets[1])
	}
}

func TestRollForward(t *testing.T) {
	tests := []struct {
		year, month         int
		wantYear, wantMonth int
	}{
		{2024, 12, 2025, 1},
		{2024, 1, 2024, 2},
		{2024, 11, 2024, 12},
	}
	for _, tc := range tests {
		y, m := RollForward(tc.year, tc.month)
		if y != tc.wantYear || m != tc.wantMonth {
			t.Fatalf("RollForward(%d, %d) = (%d, %d), want (%d, %d)", tc.year, tc.month, y, m, tc.wantYear, tc.wantMonth)
		}
	}
}

func TestNextPeriodUsesMostRecentMonth(t *testing.T) {
	buckets := []domain.DonationBucket{
		{Year: 2024, Month: 12, DonationType: "cash", Amount: 1},
		{Year: 2023, Month: 5, DonationType: "zakat", Amount: 1},
		{Year: 2024, Month: 3, DonationType: "kind", Amount: 1},
	}
	year, month, kind, ok := NextPeriod(buckets)
	if !ok {
		t.Fatal("NextPeriod returned ok=false")
	}
	if year != 2025 || month != 1 || kind != "cash" {
		t.Fatalf("NextPeriod = (%d, %d, %q), want (2025, 1, \"cash\")", year, month, kind)
	}
	if buckets[0].Year != 2024 || buckets[1].Year != 2023 {
		t.Fatal("NextPeriod must not reorder its input")
	}
}

func TestTrendPoints(t *testing.T) {
	docs := []domain.Document{
		donation("2024-01-15T08:00:00Z", 100, "cash"),
		donation("2024-01-20", 0, "cash"),
		donation("2024-02-01", -5, "cash"),
		{domain.FieldCreatedAt: "2024-02-02"},
		donation("2024-02-03", "50", "cash"),
		donation(nil, 80, "cash"),
	}
	points := TrendPoints(docs)
	want := []domain.DonationPoint{{Date: "2024-01-15", Amount: 100}, {Date: "2024-02-03", Amount: 50}}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %#v", len(want), points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Fatalf("points[%d] = %#v, want %#v", i, points[i], want[i])
		}
	}
	totals := PointTotals(points)
	if len(totals) != 2 || totals[0].Amount != 100 || totals[1].Month != 2 {
		t.Fatalf("unexpected totals %#v", totals)
	}
}
