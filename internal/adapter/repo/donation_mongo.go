package repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shree2124/NGOStream/internal/domain"
)

// donationProjection keeps only the fields the feature builder reads.
var donationProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: domain.FieldCreatedAt, Value: 1},
	{Key: domain.FieldMonetaryDetails + "." + domain.FieldAmount, Value: 1},
	{Key: domain.FieldDonationType, Value: 1},
}

// DonationRepositoryMongo reads donations from the document store.
type DonationRepositoryMongo struct {
	coll *mongo.Collection
}

// NewDonationRepositoryMongo creates a Mongo-backed donation source.
func NewDonationRepositoryMongo(coll *mongo.Collection) *DonationRepositoryMongo {
	return &DonationRepositoryMongo{coll: coll}
}

// FetchDonations returns all donations with BSON types converted to plain Go
// values.
func (r *DonationRepositoryMongo) FetchDonations(ctx context.Context) ([]domain.Document, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetProjection(donationProjection))
	if err != nil {
		return nil, fmt.Errorf("find donations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []domain.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode donation: %w", err)
		}
		docs = append(docs, NormalizeDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return docs, nil
}

// NormalizeDocument converts a decoded BSON document to a domain.Document:
// datetimes become time.Time, embedded documents map[string]any, arrays
// []any and decimals float64. The _id field is dropped.
func NormalizeDocument(raw map[string]any) domain.Document {
	doc := make(domain.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return nil
		}
		return f
	case primitive.ObjectID:
		return val.Hex()
	case primitive.M:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case primitive.A:
		return normalizeSlice(val)
	case []any:
		return normalizeSlice(val)
	default:
		return v
	}
}

func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = normalizeValue(v)
	}
	return out
}

var _ domain.DonationSource = (*DonationRepositoryMongo)(nil)
