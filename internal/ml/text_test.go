package ml

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestFitTfidf(t *testing.T) {
	v, err := FitTfidf([]string{"apple banana", "apple cherry a"})
	if err != nil {
		t.Fatalf("FitTfidf returned error: %v", err)
	}
	for term, want := range map[string]int{"apple": 0, "banana": 1, "cherry": 2} {
		if got, ok := v.Vocabulary[term]; !ok || got != want {
			t.Fatalf("Vocabulary[%q] = %d (%v), want %d", term, got, ok, want)
		}
	}
	if _, ok := v.Vocabulary["a"]; ok {
		t.Fatal("single-character tokens must not enter the vocabulary")
	}
	if math.Abs(v.IDF[0]-1) > 1e-12 {
		t.Fatalf("idf(apple) = %v, want 1", v.IDF[0])
	}
	if want := math.Log(3.0/2.0) + 1; math.Abs(v.IDF[1]-want) > 1e-12 {
		t.Fatalf("idf(banana) = %v, want %v", v.IDF[1], want)
	}

	vec := v.Transform("Banana apple durian banana")
	if len(vec.Indices) != 2 || vec.Indices[0] != 0 || vec.Indices[1] != 1 {
		t.Fatalf("unexpected indices %v", vec.Indices)
	}
	if n := floats.Norm(vec.Values, 2); math.Abs(n-1) > 1e-12 {
		t.Fatalf("vector norm = %v, want 1", n)
	}
	if vec.Values[1] <= vec.Values[0] {
		t.Fatalf("repeated rarer term should dominate: %v", vec.Values)
	}

	if empty := v.Transform("durian"); len(empty.Indices) != 0 {
		t.Fatalf("unknown terms should be ignored, got %v", empty.Indices)
	}
}

func TestFitTfidfEmptyVocabulary(t *testing.T) {
	if _, err := FitTfidf([]string{"", "a b"}); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestFitLogisticSeparatesClasses(t *testing.T) {
	docs := []string{
		"bad awful", "awful service bad", "bad experience",
		"okay fine", "fine average okay", "okay event",
		"great love", "love great team", "love wonderful",
	}
	labels := []int{0, 0, 0, 2, 2, 2, 4, 4, 4}
	v, err := FitTfidf(docs)
	if err != nil {
		t.Fatalf("FitTfidf returned error: %v", err)
	}
	model, err := FitLogistic(v.TransformAll(docs), labels, v.Dim(), DefaultLogisticConfig())
	if err != nil {
		t.Fatalf("FitLogistic returned error: %v", err)
	}
	if len(model.Classes) != 3 {
		t.Fatalf("expected 3 classes, got %v", model.Classes)
	}
	for i, doc := range docs {
		if got := model.Predict(v.Transform(doc)); got != labels[i] {
			t.Fatalf("Predict(%q) = %d, want %d", doc, got, labels[i])
		}
	}
	if got := model.Predict(v.Transform("love this great cause")); got != 4 {
		t.Fatalf("Predict(new positive) = %d, want 4", got)
	}
	probs := model.Probabilities(v.Transform("awful"))
	if math.Abs(floats.Sum(probs)-1) > 1e-9 {
		t.Fatalf("probabilities do not sum to 1: %v", probs)
	}
}

func TestFitLogisticNeedsTwoClasses(t *testing.T) {
	v, _ := FitTfidf([]string{"good", "great"})
	_, err := FitLogistic(v.TransformAll([]string{"good", "great"}), []int{4, 4}, v.Dim(), DefaultLogisticConfig())
	if !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestClassificationReport(t *testing.T) {
	yTrue := []int{0, 0, 4, 4}
	yPred := []int{0, 4, 4, 4}
	names := map[int]string{0: "negative", 4: "positive"}
	report, err := NewClassificationReport(yTrue, yPred, PresentLabels(yPred), func(l int) string { return names[l] })
	if err != nil {
		t.Fatalf("NewClassificationReport returned error: %v", err)
	}
	if report.Accuracy != 0.75 {
		t.Fatalf("Accuracy = %v, want 0.75", report.Accuracy)
	}
	if len(report.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(report.Classes))
	}
	neg := report.Classes[0]
	if neg.Precision != 1 || neg.Recall != 0.5 || neg.Support != 2 {
		t.Fatalf("unexpected negative metrics %#v", neg)
	}
	pos := report.Classes[1]
	if math.Abs(pos.Precision-2.0/3.0) > 1e-12 || pos.Recall != 1 {
		t.Fatalf("unexpected positive metrics %#v", pos)
	}
	text := report.String()
	if !strings.Contains(text, "negative") || !strings.Contains(text, "accuracy") {
		t.Fatalf("report text missing rows:\n%s", text)
	}
}

func TestClassificationReportOnlyPredictedLabels(t *testing.T) {
	report, err := NewClassificationReport([]int{0, 2, 4}, []int{4, 4, 4}, PresentLabels([]int{4, 4, 4}), nil)
	if err != nil {
		t.Fatalf("NewClassificationReport returned error: %v", err)
	}
	if len(report.Classes) != 1 || report.Classes[0].Name != "4" {
		t.Fatalf("expected only the predicted label, got %#v", report.Classes)
	}
}
