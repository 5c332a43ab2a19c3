package preview

import (
	"fmt"

	"github.com/lotuspc25/TangentialCAM/internal/toolpath"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// chart size; the output format follows the file extension
const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// PlotAngles charts the knife angle against point index.
func PlotAngles(pd *toolpath.PathData, path string) error {
	angles, ok := pd.Angles().Get()
	if !ok {
		return fmt.Errorf("%w: path has no angles", toolpath.ErrInvalidPathData)
	}

	p := plot.New()
	p.Title.Text = "Knife angle"
	p.X.Label.Text = "point"
	p.Y.Label.Text = "degrees"

	pts := make(plotter.XYs, len(angles))
	for i, a := range angles {
		pts[i].X = float64(i)
		pts[i].Y = a
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = pathColor
	p.Add(plotter.NewGrid(), line)

	return p.Save(chartWidth, chartHeight, path)
}

// PlotOutline charts the machine-space path as a closed outline with its
// start point marked.
func PlotOutline(pd *toolpath.PathData, path string) error {
	xy := pd.XY()

	p := plot.New()
	p.Title.Text = "Machine path"
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"

	pts := make(plotter.XYs, len(xy)+1)
	for i, v := range xy {
		pts[i].X, pts[i].Y = v.X, v.Y
	}
	pts[len(xy)] = pts[0]

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = pathColor

	start, err := plotter.NewScatter(pts[:1])
	if err != nil {
		return err
	}
	start.GlyphStyle.Color = startColor
	start.GlyphStyle.Shape = draw.CircleGlyph{}
	start.GlyphStyle.Radius = vg.Points(4)

	p.Add(plotter.NewGrid(), line, start)
	p.Legend.Add("path", line)
	p.Legend.Add("start", start)

	// equal axis scales so the outline is not distorted
	span := max(p.X.Max-p.X.Min, p.Y.Max-p.Y.Min)
	p.X.Max = p.X.Min + span
	p.Y.Max = p.Y.Min + span

	return p.Save(chartHeight, chartHeight, path)
}
