// Package chart renders aggregated statistics as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/igolaizola/llmtunes/pkg/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data")

const (
	width     = 10 * vg.Inch
	height    = 6 * vg.Inch
	barWidth  = vg.Length(14)
	maxLabel  = 40
	labelTilt = math.Pi / 6
)

// TopSongs draws the counts as horizontal bars, most frequent on top.
func TopSongs(title string, counts []stats.Count) ([]byte, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "selections"

	n := len(counts)
	vs := make(plotter.Values, n)
	labels := make([]string, n)
	for i, c := range counts {
		vs[n-1-i] = float64(c.Count)
		labels[n-1-i] = truncate(c.Key)
	}
	bars, err := plotter.NewBarChart(vs, barWidth)
	if err != nil {
		return nil, fmt.Errorf("chart: couldn't create bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(labels...)
	return render(p, width, height)
}

// Diversity draws unique and total songs per model side by side.
func Diversity(models []stats.ModelStat) ([]byte, error) {
	if len(models) == 0 {
		return nil, ErrNoData
	}
	unique := make(plotter.Values, len(models))
	total := make(plotter.Values, len(models))
	labels := make([]string, len(models))
	for i, m := range models {
		unique[i] = float64(m.UniqueSongs)
		total[i] = float64(m.TotalSongs)
		labels[i] = m.Model
	}
	p := plot.New()
	p.Title.Text = "Song diversity by model"
	p.Y.Label.Text = "songs"
	if err := grouped(p, []string{"unique songs", "total songs"}, []plotter.Values{unique, total}); err != nil {
		return nil, err
	}
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = labelTilt
	return render(p, width, height)
}

// GenreDistribution stacks the genre percentages of every model.
func GenreDistribution(d stats.Distribution) ([]byte, error) {
	if len(d.Models) == 0 || len(d.Genres) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Genre distribution by model (top %d genres)", len(d.Genres))
	p.Y.Label.Text = "% of genre tags"
	p.Legend.Top = true

	labels := make([]string, len(d.Models))
	for i, m := range d.Models {
		labels[i] = m.Model
	}
	var below *plotter.BarChart
	for j, g := range d.Genres {
		vs := make(plotter.Values, len(d.Models))
		for i, m := range d.Models {
			vs[i] = m.Genres[j].Percentage
		}
		bars, err := plotter.NewBarChart(vs, vg.Points(24))
		if err != nil {
			return nil, fmt.Errorf("chart: couldn't create bar chart: %w", err)
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(g, bars)
	}
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = labelTilt
	return render(p, width, height)
}

// GenreHeatmap draws the share of each genre within each model.
func GenreHeatmap(m stats.Matrix) ([]byte, error) {
	if len(m.Models) == 0 || len(m.Genres) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Genre preference heatmap (% of model genre tags)"

	grid := shareGrid{z: m.RowShares()}
	h := plotter.NewHeatMap(grid, palette.Heat(16, 1))
	h.Min, h.Max = 0, 100
	p.Add(h)

	labels := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		labels[i] = truncate(g)
	}
	p.NominalX(labels...)
	p.NominalY(m.Models...)
	p.X.Tick.Label.Rotation = labelTilt
	return render(p, width, height)
}

// TemperatureDiversity draws unique songs, unique genres and repetition
// rate for every model and temperature.
func TemperatureDiversity(ts []stats.TemperatureStat) ([]byte, error) {
	if len(ts) == 0 {
		return nil, ErrNoData
	}
	songs := make(plotter.Values, len(ts))
	genres := make(plotter.Values, len(ts))
	rate := make(plotter.Values, len(ts))
	labels := make([]string, len(ts))
	for i, t := range ts {
		songs[i] = float64(t.UniqueSongs)
		genres[i] = float64(t.UniqueGenres)
		rate[i] = t.RepetitionRate
		labels[i] = fmt.Sprintf("%s (T=%s)", t.Model, t.Label())
	}
	p := plot.New()
	p.Title.Text = "Diversity by model and temperature"
	if err := grouped(p, []string{"unique songs", "unique genres", "repetition rate (%)"}, []plotter.Values{songs, genres, rate}); err != nil {
		return nil, err
	}
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = labelTilt
	return render(p, width, height)
}

// grouped adds one bar chart per series offset around each nominal x.
func grouped(p *plot.Plot, names []string, series []plotter.Values) error {
	p.Legend.Top = true
	n := len(series)
	for i, vs := range series {
		bars, err := plotter.NewBarChart(vs, barWidth)
		if err != nil {
			return fmt.Errorf("chart: couldn't create bar chart: %w", err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * barWidth
		p.Add(bars)
		p.Legend.Add(names[i], bars)
	}
	return nil
}

func render(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	c, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: couldn't create plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: couldn't write plot: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-3]) + "..."
}

// shareGrid exposes a row major matrix as a heat map grid with models on
// the y axis and genres on the x axis.
type shareGrid struct {
	z [][]float64
}

func (g shareGrid) Dims() (c, r int) {
	if len(g.z) == 0 {
		return 0, 0
	}
	return len(g.z[0]), len(g.z)
}

func (g shareGrid) Z(c, r int) float64 {
	return g.z[r][c]
}

func (g shareGrid) X(c int) float64 {
	return float64(c)
}

func (g shareGrid) Y(r int) float64 {
	return float64(r)
}
