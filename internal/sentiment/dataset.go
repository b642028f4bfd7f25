// Package sentiment trains and serves the feedback sentiment classifier.
package sentiment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/textproc"
)

// Dataset columns: sentiment, id, date, query, user, text.
const (
	datasetColumns = 6
	colSentiment   = 0
	colText        = 5
)

var labelNames = map[int]string{
	domain.SentimentNegative:   "negative",
	domain.SentimentNeutral:    "neutral",
	domain.SentimentSuggestion: "suggestion",
	domain.SentimentPositive:   "positive",
}

// LabelFor maps a sentiment code to its name, or "unknown".
func LabelFor(code int) string {
	if name, ok := labelNames[code]; ok {
		return name
	}
	return "unknown"
}

// DatasetStats counts what LoadDataset kept and skipped.
type DatasetStats struct {
	Rows         int
	Malformed    int
	OtherLabel   int
	EmptyText    int
	PerSentiment map[int]int
}

// LoadDataset reads the header-less feedback CSV at path and returns the
// usable records with their normalized text.
func LoadDataset(path string, normalizer *textproc.Normalizer) ([]domain.FeedbackRecord, DatasetStats, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, DatasetStats{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, path)
	}
	if err != nil {
		return nil, DatasetStats{}, fmt.Errorf("%w: %v", domain.ErrDatasetRead, err)
	}
	defer f.Close()
	return ReadDataset(f, normalizer)
}

// ReadDataset parses feedback rows from r. Rows with the wrong column count,
// an unsupported sentiment, or text that normalizes to nothing are skipped.
func ReadDataset(r io.Reader, normalizer *textproc.Normalizer) ([]domain.FeedbackRecord, DatasetStats, error) {
	if normalizer == nil {
		normalizer = textproc.NewNormalizer()
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	stats := DatasetStats{PerSentiment: make(map[int]int)}
	var records []domain.FeedbackRecord
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %v", domain.ErrDatasetRead, err)
		}
		stats.Rows++
		if len(fields) != datasetColumns {
			stats.Malformed++
			continue
		}
		code, ok := parseSentiment(fields[colSentiment])
		if !ok {
			stats.OtherLabel++
			continue
		}
		text := strings.TrimSpace(fields[colText])
		if text == "" {
			stats.EmptyText++
			continue
		}
		processed := normalizer.Normalize(text)
		if processed == "" {
			stats.EmptyText++
			continue
		}
		stats.PerSentiment[code]++
		records = append(records, domain.FeedbackRecord{Sentiment: code, Text: text, ProcessedText: processed})
	}
	return records, stats, nil
}

// parseSentiment accepts integral codes written as "4" or "4.0" and only
// the known labels.
func parseSentiment(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	code, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, false
		}
		code = int(f)
	}
	_, known := labelNames[code]
	return code, known
}
