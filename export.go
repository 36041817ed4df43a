package optctl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ExportConfig configures the exporting of the sparsity patterns and Jacobians of a phase.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	AsJSON    bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsJSON
}

// PatternEntry is one structurally non zero entry of a Jacobian block.
type PatternEntry struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

// BlockExport is the JSON representation of one Jacobian block.
type BlockExport struct {
	Variable string         `json:"variable"`
	Rows     int            `json:"rows"`
	Cols     int            `json:"cols"`
	Analytic bool           `json:"analytic"`
	Pattern  []PatternEntry `json:"pattern"`
	Jacobian []PatternEntry `json:"jacobian"`
}

// CategoryExport is the JSON representation of one function category.
type CategoryExport struct {
	Category     string        `json:"category"`
	NumFunctions int           `json:"numFunctions"`
	LowerBounds  []float64     `json:"lowerBounds,omitempty"`
	UpperBounds  []float64     `json:"upperBounds,omitempty"`
	Blocks       []BlockExport `json:"blocks"`
}

// PhaseExport is the JSON catalog of a phase.
type PhaseExport struct {
	Created     string           `json:"created"`
	Phase       int              `json:"phase"`
	Evaluations uint64           `json:"evaluations"`
	Categories  []CategoryExport `json:"categories"`
}

// entries returns the non zero entries of the matrix in row major order.
func entries(m mat.Matrix) []PatternEntry {
	r, c := dims(m)
	list := []PatternEntry{}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v != 0 {
				list = append(list, PatternEntry{Row: i, Col: j, Value: v})
			}
		}
	}
	return list
}

// Catalog returns the sparsity and last Jacobian of every category provided by the path function.
func (m *PathFunctionManager) Catalog() PhaseExport {
	c := PhaseExport{Created: time.Now().UTC().Format(time.RFC3339), Phase: m.phase, Evaluations: m.evaluations}
	for _, f := range FuncTypes {
		if !*m.hasFunctions.at(f) {
			continue
		}
		cat := CategoryExport{Category: f.String(), NumFunctions: *m.numFunctions.at(f)}
		if f == Algebraic {
			cat.LowerBounds = copyVec(m.algLower)
			cat.UpperBounds = copyVec(m.algUpper)
		}
		for _, v := range VarTypes {
			b := Block{f, v}
			r, cols := dims(*m.pattern.at(b))
			cat.Blocks = append(cat.Blocks, BlockExport{
				Variable: v.String(),
				Rows:     r,
				Cols:     cols,
				Analytic: cols > 0 && !*m.needsFD.at(b),
				Pattern:  entries(*m.pattern.at(b)),
				Jacobian: entries(*m.jacobian.at(b)),
			})
		}
		c.Categories = append(c.Categories, cat)
	}
	return c
}

// WriteJSON writes the catalog of the phase as indented JSON.
func (m *PathFunctionManager) WriteJSON(w io.Writer) error {
	marsh, err := json.MarshalIndent(m.Catalog(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(marsh)
	return err
}

// WriteCSV writes one record per non zero pattern entry of every block of category f as
// variable,row,col,jacobian. A structural non zero whose last Jacobian value is zero is kept.
func (m *PathFunctionManager) WriteCSV(w io.Writer, f FuncType) error {
	if !f.Valid() {
		return wrapUnknownFunc(f)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"variable", "row", "col", "jacobian"}); err != nil {
		return err
	}
	if *m.hasFunctions.at(f) {
		for _, v := range VarTypes {
			b := Block{f, v}
			jac := *m.jacobian.at(b)
			jr, jc := dims(jac)
			for _, e := range entries(*m.pattern.at(b)) {
				val := 0.0
				if e.Row < jr && e.Col < jc {
					val = jac.At(e.Row, e.Col)
				}
				record := []string{v.String(), strconv.Itoa(e.Row), strconv.Itoa(e.Col), strconv.FormatFloat(val, 'g', -1, 64)}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportFilename returns the path of an export file in the output directory.
func exportFilename(prefix, filename, ext string, stamped bool) string {
	if stamped {
		t := time.Now()
		return fmt.Sprintf("%s/%s-%s-%d-%02d-%02dT%02d.%02d.%02d.%s", OutputDir(), prefix, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), ext)
	}
	return fmt.Sprintf("%s/%s-%s.%s", OutputDir(), prefix, filename, ext)
}

// Export writes the files requested by the config to the output directory and returns their names.
func (m *PathFunctionManager) Export(conf ExportConfig) ([]string, error) {
	var written []string
	if conf.IsUseless() {
		return written, nil
	}
	if conf.AsJSON {
		name := exportFilename("catalog", conf.Filename, "json", conf.Timestamp)
		if err := writeFile(name, m.WriteJSON); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	if conf.AsCSV {
		for _, f := range FuncTypes {
			if !*m.hasFunctions.at(f) {
				continue
			}
			name := exportFilename("sparsity-"+f.String(), conf.Filename, "csv", conf.Timestamp)
			ft := f
			if err := writeFile(name, func(w io.Writer) error { return m.WriteCSV(w, ft) }); err != nil {
				return written, err
			}
			written = append(written, name)
		}
	}
	m.logger.Log("level", "info", "subsys", "export", "phase", m.phase, "files", len(written))
	return written, nil
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
