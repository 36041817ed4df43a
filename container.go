package optctl

import (
	"gonum.org/v1/gonum/mat"
)

// PathFunctionContainer bundles the dynamics, algebraic and cost outputs of one evaluation point.
type PathFunctionContainer struct {
	data funcSet[*FunctionOutputData]
}

// NewPathFunctionContainer returns a container whose records are created on Initialize.
func NewPathFunctionContainer() *PathFunctionContainer {
	return &PathFunctionContainer{}
}

// Initialize creates the three output records if they do not exist yet.
func (c *PathFunctionContainer) Initialize() {
	for _, f := range FuncTypes {
		if *c.data.at(f) == nil {
			*c.data.at(f) = NewFunctionOutputData(f)
		}
	}
}

// Data returns the output record of the provided category.
func (c *PathFunctionContainer) Data(f FuncType) (*FunctionOutputData, error) {
	if !f.Valid() {
		return nil, wrapUnknownFunc(f)
	}
	c.Initialize()
	return *c.data.at(f), nil
}

// Dyn returns the dynamics record.
func (c *PathFunctionContainer) Dyn() *FunctionOutputData {
	d, _ := c.Data(Dynamics)
	return d
}

// Alg returns the algebraic record.
func (c *PathFunctionContainer) Alg() *FunctionOutputData {
	d, _ := c.Data(Algebraic)
	return d
}

// Cost returns the cost record.
func (c *PathFunctionContainer) Cost() *FunctionOutputData {
	d, _ := c.Data(Cost)
	return d
}

func (c *PathFunctionContainer) setInitializing(b bool) {
	c.Initialize()
	for _, f := range FuncTypes {
		(*c.data.at(f)).setInitializing(b)
	}
}

// scratch returns a container with the same declarations as this one, for perturbed evaluations.
func (c *PathFunctionContainer) scratch() *PathFunctionContainer {
	c.Initialize()
	s := &PathFunctionContainer{}
	for _, f := range FuncTypes {
		*s.data.at(f) = (*c.data.at(f)).scratch()
	}
	return s
}

// reset clears what a previous initialization learned about the user function.
func (c *PathFunctionContainer) reset() {
	c.Initialize()
	for _, f := range FuncTypes {
		d := *c.data.at(f)
		d.hasUserFunction = false
		d.numFunctions = 0
		d.values = []float64{}
		d.lower, d.upper = nil, nil
		for _, v := range VarTypes {
			*d.hasJacobian.at(v) = false
			*d.jacobian.at(v) = &mat.Dense{}
		}
	}
}
