package domain

import "time"

// Document is a semi-structured record as returned by a document store.
// Nested objects are map[string]any and datetimes are time.Time.
type Document map[string]any

// Donation field names as stored in the donations collection.
const (
	FieldCreatedAt       = "createdAt"
	FieldMonetaryDetails = "monetaryDetails"
	FieldAmount          = "amount"
	FieldDonationType    = "donationType"
)

// UnknownDonationType is used when a record carries no donation type.
const UnknownDonationType = "Unknown"

// DonationRow is a cleaned donation with its derived calendar fields.
type DonationRow struct {
	CreatedAt    time.Time
	Amount       float64
	DonationType string
	Year         int
	Month        int
	Day          int
	DayOfWeek    int // Monday=0
	Quarter      int
}

// DonationBucket holds the summed amount for one (year, month, type) group.
type DonationBucket struct {
	Year         int
	Month        int
	DonationType string
	Amount       float64
}

// MonthlyTotal is the summed amount of a calendar month.
type MonthlyTotal struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

// DonationPoint is a single dated donation used for trend charts.
type DonationPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DonationTrends groups the raw points with their monthly roll-up.
type DonationTrends struct {
	Points        []DonationPoint `json:"numeric_data"`
	MonthlyTotals []MonthlyTotal  `json:"monthly_totals"`
}

// Forecast is the result of predicting the next month's donations.
type Forecast struct {
	Average       float64        `json:"average"`
	Predicted     float64        `json:"predicted"`
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	MonthlyTotals []MonthlyTotal `json:"monthly_totals"`
	ModelVersion  string         `json:"model_version"`
}

// TrainingResult describes a persisted model produced by a training run.
type TrainingResult struct {
	Model     string  `json:"model"`
	Version   string  `json:"version"`
	Path      string  `json:"model_path"`
	Trained   bool    `json:"trained"`
	RMSE      float64 `json:"rmse"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}
