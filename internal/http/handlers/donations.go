package handlers

import (
	"net/http"

	"github.com/Shree2124/NGOStream/internal/domain"
)

type monthlyTotalJSON struct {
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Amount int64 `json:"amount"`
}

func toMonthlyJSON(totals []domain.MonthlyTotal) []monthlyTotalJSON {
	out := make([]monthlyTotalJSON, 0, len(totals))
	for _, t := range totals {
		out = append(out, monthlyTotalJSON{Year: t.Year, Month: t.Month, Amount: int64(t.Amount)})
	}
	return out
}

// TrainModel retrains the donation forecast model.
func (a *App) TrainModel(w http.ResponseWriter, r *http.Request) {
	result, err := a.Forecast.Train(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"message":    "Model trained and saved",
		"model_path": result.Path,
		"version":    result.Version,
		"rmse":       result.RMSE,
	})
}

// FundraisingMetrics returns the average monthly total and next month's
// predicted amount.
func (a *App) FundraisingMetrics(w http.ResponseWriter, r *http.Request) {
	forecast, err := a.Forecast.Predict(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"average":        forecast.Average,
		"predicted":      forecast.Predicted,
		"monthly_totals": toMonthlyJSON(forecast.MonthlyTotals),
	})
}

// DonationTrends returns dated donation points and their monthly totals.
func (a *App) DonationTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := a.Forecast.Trends(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	points := trends.Points
	if points == nil {
		points = []domain.DonationPoint{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"message":        "Donation trends data",
		"numeric_data":   points,
		"monthly_totals": toMonthlyJSON(trends.MonthlyTotals),
	})
}
