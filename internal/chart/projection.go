package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/vicanso/go-charts/v2"

	"github.com/wonny/riskscope/internal/contracts"
)

var ErrEmptyProjection = errors.New("empty projection")

// Projection renders the median/p10/p90 bands of a scenario report as PNG
func Projection(report *contracts.ScenarioReport) ([]byte, error) {
	bands := report.Projection
	n := len(bands.Median)
	if n == 0 || len(bands.P10) != n || len(bands.P90) != n {
		return nil, ErrEmptyProjection
	}

	series := [][]float64{
		toValues(bands.P10),
		toValues(bands.Median),
		toValues(bands.P90),
	}

	// y축 범위 계산
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 0) || math.IsInf(maxVal, 0) {
		return nil, ErrEmptyProjection
	}
	padding := (maxVal - minVal) * 0.1
	if padding == 0 {
		padding = math.Abs(maxVal) * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	xLabels := make([]string, n)
	for i := range xLabels {
		xLabels[i] = fmt.Sprintf("D%d", i+1)
	}

	title := fmt.Sprintf("Scenario %s", report.ScenarioID)
	subtitle := fmt.Sprintf("Expected loss: %.2f%% | VaR95: %.2f%% | MaxDD: %.2f%% | Recovery: %.1f mo",
		float64(report.ExpectedLossPct), float64(report.VaR95), float64(report.MaxDrawdown), float64(report.RecoveryTimeMonths))

	p, err := charts.LineRender(
		series,
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: 6,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: []string{"p10", "median", "p90"}}),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(500),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// toValues drops the null marker by carrying the previous value
func toValues(fs []contracts.Float) []float64 {
	out := make([]float64, len(fs))
	prev := 0.0
	for i, f := range fs {
		if f.Valid() {
			prev = float64(f)
		}
		out[i] = prev
	}
	return out
}
