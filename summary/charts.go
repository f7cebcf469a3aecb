package summary

import (
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

func renderAccuracyBars(path, title string, acc []float64, classNames []string) error {
	if len(acc) == 0 {
		return errors.Errorf("%s: no classes to plot", title)
	}
	bars := make([]chart.Value, len(acc))
	for i, a := range acc {
		label := strconv.Itoa(i)
		if i < len(classNames) {
			label = classNames[i]
		}
		if math.IsNaN(a) {
			a = 0
		}
		bars[i] = chart.Value{Value: a, Label: label}
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.StyleShow(),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Height:   512,
		BarWidth: 40,
		XAxis:    chart.StyleShow(),
		YAxis: chart.YAxis{
			Style: chart.StyleShow(),
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}
	return writeChart(path, func(f *os.File) error { return graph.Render(chart.PNG, f) })
}

func renderCurves(path, title string, tags []string, history map[string][]Point) error {
	var series []chart.Series
	for i, tag := range tags {
		points := history[tag]
		if len(points) < 2 {
			continue
		}
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for j, p := range points {
			xs[j] = float64(p.Step)
			ys[j] = p.Value
		}
		series = append(series, chart.ContinuousSeries{
			Name:    tag,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.GetAlternateColor(i),
			},
		})
	}
	if len(series) == 0 {
		// a curve needs two epochs
		return nil
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "epoch",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}
	return writeChart(path, func(f *os.File) error { return graph.Render(chart.PNG, f) })
}

const (
	matrixCell   = 48
	matrixLeft   = 72
	matrixTop    = 48
	matrixBottom = 48
)

// renderMatrix draws cells as a heatmap, rows are target classes and
// columns predicted ones.
func renderMatrix(path, title string, cells [][]float64, format func(float64) string, classNames []string) error {
	n := len(cells)
	if n == 0 {
		return errors.Errorf("%s: no classes to plot", title)
	}
	width := matrixLeft + n*matrixCell + 16
	height := matrixTop + n*matrixCell + matrixBottom

	r, err := chart.PNG(width, height)
	if err != nil {
		return errors.Wrapf(err, "%s: renderer", title)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return errors.Wrapf(err, "%s: font", title)
	}
	r.SetFont(font)
	fillRect(r, 0, 0, width, height, drawing.ColorWhite)

	var max float64
	for _, row := range cells {
		for _, v := range row {
			if !math.IsNaN(v) && v > max {
				max = v
			}
		}
	}

	name := func(i int) string {
		if i < len(classNames) {
			return classNames[i]
		}
		return strconv.Itoa(i)
	}

	r.SetFontSize(10)
	for i, row := range cells {
		y := matrixTop + i*matrixCell
		r.SetFontColor(drawing.ColorBlack)
		r.Text(name(i), 8, y+matrixCell/2+4)
		for j, v := range row {
			x := matrixLeft + j*matrixCell
			shade := 0.
			if max > 0 && !math.IsNaN(v) {
				shade = v / max
			}
			fillRect(r, x, y, x+matrixCell, y+matrixCell, heat(shade))
			if shade > 0.6 {
				r.SetFontColor(drawing.ColorWhite)
			} else {
				r.SetFontColor(drawing.ColorBlack)
			}
			r.Text(format(v), x+6, y+matrixCell/2+4)
		}
	}
	r.SetFontColor(drawing.ColorBlack)
	for j := 0; j < n; j++ {
		r.Text(name(j), matrixLeft+j*matrixCell+6, matrixTop+n*matrixCell+16)
	}
	r.Text("predicted", matrixLeft, height-8)
	r.Text("true", 8, matrixTop-8)

	r.SetFontSize(12)
	r.Text(title, matrixLeft, 24)

	return writeChart(path, func(f *os.File) error { return r.Save(f) })
}

// heat maps 0..1 from white to dark blue.
func heat(t float64) drawing.Color {
	return drawing.Color{
		R: uint8(255 * (1 - 0.9*t)),
		G: uint8(255 * (1 - 0.7*t)),
		B: uint8(255 * (1 - 0.3*t)),
		A: 255,
	}
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

func writeChart(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := render(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "render %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
