package domain

// Sentiment codes used by the feedback dataset.
const (
	SentimentNegative   = 0
	SentimentNeutral    = 2
	SentimentSuggestion = 3
	SentimentPositive   = 4
)

// FeedbackRecord is a labeled feedback row after normalization.
type FeedbackRecord struct {
	Sentiment     int
	Text          string
	ProcessedText string
}

// SentimentResult pairs an input text with its predicted label.
type SentimentResult struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}
