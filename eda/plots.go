package eda

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

const barWidth = 14

// ROC is one curve for PlotROC.
type ROC struct {
	Name string
	FPR  []float64
	TPR  []float64
	AUC  float64
}

// save writes p to path; the image format follows the file extension.
func save(p *plot.Plot, w, h vg.Length, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// stackedBars draws horizontal 0/1 share bars, one per name.
func stackedBars(p *plot.Plot, names []string, negative, positive []float64) error {
	neg, err := plotter.NewBarChart(plotter.Values(negative), vg.Points(barWidth))
	if err != nil {
		return errors.Wrap(err, "negative bars")
	}
	neg.Horizontal = true
	neg.Color = plotutil.Color(0)
	neg.LineStyle.Width = 0

	pos, err := plotter.NewBarChart(plotter.Values(positive), vg.Points(barWidth))
	if err != nil {
		return errors.Wrap(err, "positive bars")
	}
	pos.Horizontal = true
	pos.Color = plotutil.Color(1)
	pos.LineStyle.Width = 0
	pos.StackOn(neg)

	p.Add(neg, pos)
	p.Legend.Add("0", neg)
	p.Legend.Add("1", pos)
	p.Legend.Top = true
	p.NominalY(names...)
	p.X.Min, p.X.Max = 0, 1
	return nil
}

// PlotLabelDistribution draws the share of each label value per target.
func PlotLabelDistribution(path string, targets []string, labels [][]float64) error {
	if len(targets) == 0 || len(targets) != len(labels) {
		return errors.NewValidationError("targets", "need one label column per target", len(targets))
	}

	negative := make([]float64, len(targets))
	positive := make([]float64, len(targets))
	for k, col := range labels {
		for _, c := range ValueCounts(col, true) {
			switch c.Value {
			case 0:
				negative[k] = c.Frequency
			case 1:
				positive[k] = c.Frequency
			}
		}
	}

	p := plot.New()
	p.Title.Text = "Proportion of respondents vaccinated"
	p.X.Label.Text = "share"
	if err := stackedBars(p, targets, negative, positive); err != nil {
		return err
	}
	return save(p, 6*vg.Inch, vg.Length(1.5+0.6*float64(len(targets)))*vg.Inch, path)
}

// PlotRateByLevel draws, for each level of feature, the share of respondents
// with target 0 and 1.
func PlotRateByLevel(path, feature, target string, rates []LevelRate) error {
	if len(rates) == 0 {
		return errors.NewValidationError("rates", "no levels to plot", feature)
	}
	names := make([]string, len(rates))
	negative := make([]float64, len(rates))
	positive := make([]float64, len(rates))
	for i, r := range rates {
		names[i] = r.Level
		negative[i] = r.Negative
		positive[i] = r.Positive
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by %s", target, feature)
	p.X.Label.Text = "share within level"
	p.Y.Label.Text = feature
	if err := stackedBars(p, names, negative, positive); err != nil {
		return err
	}
	return save(p, 6*vg.Inch, vg.Length(1.5+0.4*float64(len(rates)))*vg.Inch, path)
}

// PlotROC draws each curve and the chance diagonal.
func PlotROC(path string, curves []ROC) error {
	if len(curves) == 0 {
		return errors.NewValidationError("curves", "no ROC curves to plot", 0)
	}

	p := plot.New()
	p.Title.Text = "ROC curve"
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Left = false
	p.Legend.Top = false

	for i, c := range curves {
		if len(c.FPR) != len(c.TPR) || len(c.FPR) == 0 {
			return errors.NewDimensionError("PlotROC", len(c.FPR), len(c.TPR), 0)
		}
		pts := make(plotter.XYs, len(c.FPR))
		for j := range c.FPR {
			pts[j] = plotter.XY{X: c.FPR[j], Y: c.TPR[j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "curve %s", c.Name)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s (AUC = %.4f)", c.Name, c.AUC), line)
	}

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "chance line")
	}
	chance.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	chance.Color = plotutil.Color(len(curves))
	p.Add(chance)

	return save(p, 5*vg.Inch, 5*vg.Inch, path)
}
