package tools

import (
	"fmt"
	"image/color"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SparsityPattern returns the blocks of the properties side by side, in the state, control,
// time and static order. It is empty if the category has no functions or no variables.
func SparsityPattern(props optctl.UserFunctionProperties) *mat.Dense {
	rows, cols := props.NumberOfFunctions(), 0
	for _, v := range optctl.VarTypes {
		_, c := props.JacobianPattern(v).Dims()
		cols += c
	}
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	full := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, v := range optctl.VarTypes {
		block := props.JacobianPattern(v)
		r, c := block.Dims()
		if r != rows {
			r = 0
		}
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				full.Set(i, offset+j, block.At(i, j))
			}
		}
		offset += c
	}
	return full
}

// SpyPlot returns a plot of the non zero entries of the matrix, with the first row at the top.
func SpyPlot(m mat.Matrix, title string) (*plot.Plot, error) {
	r, c := m.Dims()
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "variable"
	p.Y.Label.Text = "function"
	p.X.Min, p.X.Max = -1, float64(c)
	p.Y.Min, p.Y.Max = -1, float64(r)
	pts := plotter.XYs{}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				pts = append(pts, plotter.XY{X: float64(j), Y: float64(r - 1 - i)})
			}
		}
	}
	if len(pts) == 0 {
		return p, nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Shape = draw.BoxGlyph{}
	s.GlyphStyle.Color = color.RGBA{R: 20, G: 60, B: 160, A: 255}
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s)
	return p, nil
}

// SaveSpyPlot writes the spy plot of the properties to filename, the format follows its extension.
func SaveSpyPlot(props optctl.UserFunctionProperties, title, filename string) error {
	full := SparsityPattern(props)
	r, c := full.Dims()
	p, err := SpyPlot(full, fmt.Sprintf("%s (%d functions, %d variables)", title, r, c))
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
