package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

const invalidTextsMessage = "Invalid input. Expected a list of texts."

const maxAnalyzeBody = 1 << 20

type analyzeRequest struct {
	Texts json.RawMessage `json:"texts"`
}

// Analyze labels each text of {"texts": [...]} with a sentiment.
func (a *App) Analyze(w http.ResponseWriter, r *http.Request) {
	texts, ok := decodeTexts(http.MaxBytesReader(w, r.Body, maxAnalyzeBody))
	if !ok {
		a.error(w, http.StatusBadRequest, "invalid_input", invalidTextsMessage)
		return
	}
	results, err := a.Sentiment.Predict(r.Context(), texts)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"sentiments": results})
}

func decodeTexts(body io.Reader) ([]string, bool) {
	var req analyzeRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil || len(req.Texts) == 0 {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal(req.Texts, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	texts := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		texts[i] = s
	}
	return texts, true
}

// TrainFeedbackModel trains the feedback classifier if none exists, or
// always when ?force=true.
func (a *App) TrainFeedbackModel(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "invalid_input", "force must be a boolean")
			return
		}
		force = v
	}

	result, err := a.Sentiment.Train(r.Context(), force)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	message := "Model trained and saved"
	if !result.Trained {
		message = "Model already exists"
	}
	a.json(w, http.StatusOK, map[string]any{
		"message":    message,
		"trained":    result.Trained,
		"model_path": result.Path,
		"version":    result.Version,
	})
}
