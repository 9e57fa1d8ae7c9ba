package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleFrameChart renders a top-down scatter of the latest frame, coloured
// by height. Sentinel points are skipped.
// Query params:
//   - max_points (optional; default 8000) to reduce payload size
func (ws *WebServer) handleFrameChart(w http.ResponseWriter, r *http.Request) {
	snap, _ := ws.snapshots.Latest()
	if snap == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no frame published yet")
		return
	}

	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	stride := 1
	if len(snap.Points) > maxPoints {
		stride = int(math.Ceil(float64(len(snap.Points)) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(snap.Points)/stride+1)
	maxAbs := 0.0
	zMin, zMax := math.Inf(1), math.Inf(-1)
	for i := 0; i < len(snap.Points); i += stride {
		p := snap.Points[i]
		if p.X == 0 && p.Y == 0 && p.Z == 0 {
			continue
		}
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.X), math.Abs(p.Y)))
		zMin = math.Min(zMin, p.Z)
		zMax = math.Max(zMax, p.Z)
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Z}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if len(data) == 0 {
		zMin, zMax = 0, 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Livox frame (top view)", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Latest frame", Subtitle: fmt.Sprintf("seq=%d returns=%d stride=%d", snap.Stats.Sequence, len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(zMin),
			Max:        float32(zMax),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("points", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
