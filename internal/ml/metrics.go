package ml

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
)

// RMSE is the root mean squared error between two equal-length vectors.
func RMSE(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("ml: rmse length mismatch %d != %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("%w: rmse of empty vectors", ErrTooFewSamples)
	}
	return floats.Distance(yTrue, yPred, 2) / math.Sqrt(float64(len(yTrue))), nil
}

// ClassMetrics are the per-label scores of a classification report.
type ClassMetrics struct {
	Label     int
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassificationReport summarizes predictions against ground truth.
type ClassificationReport struct {
	Classes    []ClassMetrics
	Accuracy   float64
	MacroF1    float64
	WeightedF1 float64
	Total      int
}

// PresentLabels returns the distinct labels of values, ascending.
func PresentLabels(values []int) []int { return uniqueSorted(values) }

// NewClassificationReport scores yPred against yTrue for the given labels.
// name maps a label to its display name and may be nil.
func NewClassificationReport(yTrue, yPred []int, labels []int, name func(int) string) (ClassificationReport, error) {
	if len(yTrue) != len(yPred) {
		return ClassificationReport{}, fmt.Errorf("ml: report length mismatch %d != %d", len(yTrue), len(yPred))
	}
	report := ClassificationReport{Total: len(yTrue)}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	if len(yTrue) > 0 {
		report.Accuracy = float64(correct) / float64(len(yTrue))
	}

	var supportSum int
	for _, label := range labels {
		var tp, fp, fn int
		for i := range yTrue {
			switch {
			case yPred[i] == label && yTrue[i] == label:
				tp++
			case yPred[i] == label:
				fp++
			case yTrue[i] == label:
				fn++
			}
		}
		m := ClassMetrics{Label: label, Name: fmt.Sprint(label), Support: tp + fn}
		if name != nil {
			m.Name = name(label)
		}
		m.Precision = ratio(tp, tp+fp)
		m.Recall = ratio(tp, tp+fn)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes = append(report.Classes, m)
		report.MacroF1 += m.F1
		report.WeightedF1 += m.F1 * float64(m.Support)
		supportSum += m.Support
	}
	if len(labels) > 0 {
		report.MacroF1 /= float64(len(labels))
	}
	if supportSum > 0 {
		report.WeightedF1 /= float64(supportSum)
	}
	return report, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as an aligned table.
func (r ClassificationReport) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, c := range r.Classes {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", c.Name, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(w, "accuracy\t\t\t%.2f\t%d\t\n", r.Accuracy, r.Total)
	fmt.Fprintf(w, "macro f1\t\t\t%.2f\t\t\n", r.MacroF1)
	fmt.Fprintf(w, "weighted f1\t\t\t%.2f\t\t\n", r.WeightedF1)
	_ = w.Flush()
	return b.String()
}
