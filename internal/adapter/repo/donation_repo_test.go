package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/infra"
	"github.com/Shree2124/NGOStream/internal/sqlinline"
)

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

type historyRow struct {
	createdAt    *time.Time
	amount       *float64
	donationType *string
}

type historyRows struct {
	testRowsBase
	rows   []historyRow
	idx    int
	err    error
	closed bool
}

func (h *historyRows) Next() bool {
	if h.idx >= len(h.rows) {
		return false
	}
	h.idx++
	return true
}

func (h *historyRows) Scan(dest ...any) error {
	if len(dest) != 3 {
		return fmt.Errorf("unexpected scan args: %d", len(dest))
	}
	row := h.rows[h.idx-1]
	*dest[0].(**time.Time) = row.createdAt
	*dest[1].(**float64) = row.amount
	*dest[2].(**string) = row.donationType
	return nil
}

func (h *historyRows) Err() error { return h.err }

func (h *historyRows) Close() { h.closed = true }

type historySQL struct {
	rows *historyRows
	err  error
}

func (s *historySQL) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	if query != sqlinline.QListDonationHistory {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

var _ infra.SQLExecutor = (*historySQL)(nil)

func ptr[T any](v T) *T { return &v }

func TestDonationRepositoryPGFetchDonations(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := &historyRows{rows: []historyRow{
		{createdAt: &created, amount: ptr(250.0), donationType: ptr("Cash")},
		{createdAt: &created},
		{amount: ptr(10.0), donationType: ptr("Goods")},
	}}
	repo := NewDonationRepository(&historySQL{rows: rows})

	docs, err := repo.FetchDonations(context.Background())
	if err != nil {
		t.Fatalf("FetchDonations returned error: %v", err)
	}
	if !rows.closed {
		t.Fatal("rows were not closed")
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}

	first := docs[0]
	if first[domain.FieldCreatedAt] != created || first[domain.FieldDonationType] != "Cash" {
		t.Fatalf("unexpected first document %#v", first)
	}
	if amount := first[domain.FieldMonetaryDetails].(map[string]any)[domain.FieldAmount]; amount != 250.0 {
		t.Fatalf("amount = %#v, want 250", amount)
	}

	second := docs[1]
	if _, ok := second[domain.FieldDonationType]; ok {
		t.Fatalf("NULL donation type should be omitted: %#v", second)
	}
	if details := second[domain.FieldMonetaryDetails].(map[string]any); len(details) != 0 {
		t.Fatalf("NULL amount should be omitted: %#v", details)
	}

	if _, ok := docs[2][domain.FieldCreatedAt]; ok {
		t.Fatalf("NULL created_at should be omitted: %#v", docs[2])
	}
}

func TestDonationRepositoryPGErrors(t *testing.T) {
	boom := errors.New("db down")
	if _, err := NewDonationRepository(&historySQL{err: boom}).FetchDonations(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}

	rows := &historyRows{err: boom}
	if _, err := NewDonationRepository(&historySQL{rows: rows}).FetchDonations(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped iteration error, got %v", err)
	}
}

func TestNormalizeDocument(t *testing.T) {
	created := time.Date(2024, 8, 18, 10, 30, 0, 0, time.UTC)
	dec, err := primitive.ParseDecimal128("125.50")
	if err != nil {
		t.Fatalf("ParseDecimal128 returned error: %v", err)
	}
	raw := bson.M{
		"_id":                 primitive.NewObjectID(),
		domain.FieldCreatedAt: primitive.NewDateTimeFromTime(created),
		domain.FieldMonetaryDetails: bson.D{
			{Key: domain.FieldAmount, Value: dec},
		},
		domain.FieldDonationType: "Cash",
		"tags":                   bson.A{"a", bson.M{"nested": primitive.NewDateTimeFromTime(created)}},
	}

	doc := NormalizeDocument(raw)
	if _, ok := doc["_id"]; ok {
		t.Fatal("_id should be dropped")
	}
	if got, ok := doc[domain.FieldCreatedAt].(time.Time); !ok || !got.Equal(created) {
		t.Fatalf("createdAt = %#v, want %v", doc[domain.FieldCreatedAt], created)
	}
	details, ok := doc[domain.FieldMonetaryDetails].(map[string]any)
	if !ok {
		t.Fatalf("monetaryDetails = %#v, want map", doc[domain.FieldMonetaryDetails])
	}
	if details[domain.FieldAmount] != 125.5 {
		t.Fatalf("amount = %#v, want 125.5", details[domain.FieldAmount])
	}
	tags, ok := doc["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("tags = %#v", doc["tags"])
	}
	nested, ok := tags[1].(map[string]any)
	if !ok {
		t.Fatalf("nested = %#v", tags[1])
	}
	if _, ok := nested["nested"].(time.Time); !ok {
		t.Fatalf("nested datetime not converted: %#v", nested["nested"])
	}
}
