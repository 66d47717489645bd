package leaderboardservice

import (
	"bytes"
	"fmt"

	leaderboarddomain "github.com/Black-And-White-Club/gamezone-api/app/modules/leaderboard/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	BarLeader  drawing.Color
	TextColor  drawing.Color
}

// DefaultChartPalette matches the portal's dark theme.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorFromHex("14161A"),
	Bar:        drawing.ColorFromHex("3C7DD9"),
	BarLeader:  drawing.ColorFromHex("E0B341"),
	TextColor:  drawing.ColorFromHex("E6E6E6"),
}

// GenerateRewardChart produces a PNG bar chart of the first n rows that have
// earned any reward. Rows are expected in rank order.
func GenerateRewardChart(rows []leaderboarddomain.LeaderboardRow, n int, palette ChartPalette) ([]byte, error) {
	if n <= 0 {
		n = 10
	}

	bars := make([]chart.Value, 0, n)
	top := 0.0
	for _, row := range rows {
		if len(bars) == n {
			break
		}
		if row.CumulativeReward <= 0 {
			continue
		}
		top = max(top, row.CumulativeReward)
		fill := palette.Bar
		if row.Rank == 1 {
			fill = palette.BarLeader
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("#%d %s", row.Rank, row.DisplayName),
			Value: row.CumulativeReward,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: fill,
				StrokeWidth: 0,
			},
		})
	}

	if len(bars) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	graph := chart.BarChart{
		Title: "Top rewards this epoch",
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		Width:    max(400, 90*len(bars)+100),
		Height:   400,
		BarWidth: 50,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			// Bars start at zero even when every value is equal.
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render reward chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No rewards earned yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
