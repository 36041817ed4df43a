package optctl

import (
	"math/rand/v2"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Source is the random generator used by the sparsity discovery. Both math/rand and
// math/rand/v2 generators implement it.
type Source interface {
	Float64() float64
}

// PathFunctionManager evaluates the user path functions of one phase, completes their
// Jacobians by forward finite differences and discovers their sparsity patterns.
// A manager is not safe for concurrent use: use one manager per phase.
type PathFunctionManager struct {
	userFunc     PathFunction
	caps         capabilities
	hasFunction  bool
	initializing bool
	initialized  bool
	phase        int
	numVars      varSet[int]
	hasFunctions funcSet[bool]
	numFunctions funcSet[int]
	jacobian     blockSet[*mat.Dense]
	pattern      blockSet[*mat.Dense]
	userPattern  blockSet[bool]
	needsFD      blockSet[bool]
	algLower     []float64
	algUpper     []float64
	perturbation varSet[float64]
	samples      int
	checkFinite  bool
	rng          Source
	logger       kitlog.Logger
	evaluations  uint64
}

// Option configures a PathFunctionManager.
type Option func(*PathFunctionManager)

// WithLogger sets the logger.
func WithLogger(l kitlog.Logger) Option {
	return func(m *PathFunctionManager) {
		m.logger = l
	}
}

// WithSource sets the random generator of the sparsity discovery.
func WithSource(src Source) Option {
	return func(m *PathFunctionManager) {
		m.rng = src
	}
}

// WithSeed seeds the random generator of the sparsity discovery for reproducible patterns.
func WithSeed(seed uint64) Option {
	return func(m *PathFunctionManager) {
		m.rng = newSource(seed)
	}
}

// WithRandomSamples sets the number of random interior points probed per category.
func WithRandomSamples(n int) Option {
	return func(m *PathFunctionManager) {
		if n >= 0 {
			m.samples = n
		}
	}
}

// WithPerturbation sets the default finite difference step of a variable type. A path
// function implementing Perturber takes precedence.
func WithPerturbation(v VarType, h float64) Option {
	return func(m *PathFunctionManager) {
		if v.Valid() && h > 0 {
			*m.perturbation.at(v) = h
		}
	}
}

// WithFiniteCheck enables or disables the NaN and Inf guard on nominal evaluations and
// finite difference columns.
func WithFiniteCheck(enabled bool) Option {
	return func(m *PathFunctionManager) {
		m.checkFinite = enabled
	}
}

// NewPathFunctionManager returns a new manager configured from the settings and the options.
func NewPathFunctionManager(opts ...Option) *PathFunctionManager {
	conf := settings()
	m := &PathFunctionManager{samples: conf.randomSamples, checkFinite: conf.checkFinite}
	for _, v := range VarTypes {
		*m.perturbation.at(v) = conf.Perturbation(v)
	}
	m.rng = newSource(conf.seed)
	m.logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	for _, opt := range opts {
		opt(m)
	}
	m.clearBlocks()
	return m
}

func newSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (m *PathFunctionManager) clearBlocks() {
	for _, f := range FuncTypes {
		for _, v := range VarTypes {
			b := Block{f, v}
			*m.jacobian.at(b) = &mat.Dense{}
			*m.pattern.at(b) = &mat.Dense{}
			*m.userPattern.at(b) = false
			*m.needsFD.at(b) = false
		}
		*m.hasFunctions.at(f) = false
		*m.numFunctions.at(f) = 0
	}
	m.algLower, m.algUpper = nil, nil
}

// Initialize learns the functions provided by uf at the nominal point in, sizes the Jacobians,
// computes the sparsity patterns and the blocks which need finite differencing.
// A nil uf means that this phase has no path functions.
func (m *PathFunctionManager) Initialize(uf PathFunction, in *FunctionInputData, out *PathFunctionContainer, bounds *BoundData) error {
	if in == nil || out == nil || bounds == nil {
		return errors.Wrap(ErrNilCollaborator, "Initialize requires the input data, the function container and the bounds")
	}
	m.initialized = false
	m.clearBlocks()
	m.phase = in.Phase()
	for _, v := range VarTypes {
		*m.numVars.at(v) = in.NumVars(v)
	}
	if uf == nil {
		m.hasFunction = false
		m.userFunc = nil
		m.logger.Log("level", "notice", "subsys", "init", "phase", m.phase, "message", "no path function")
		return nil
	}
	m.hasFunction = true
	m.userFunc = uf
	m.caps = capabilitiesOf(uf)

	m.initializing = true
	out.reset()
	out.setInitializing(true)
	defer func() {
		m.initializing = false
		out.setInitializing(false)
	}()

	if m.caps.initializer {
		if err := uf.(Initializer).Initialize(in, out); err != nil {
			return wrapUser("Initialize", m.phase, err)
		}
	}
	// Learn the functions and the analytic Jacobians the user provides.
	in.SetIsPerturbing(false)
	if err := m.evaluate("Initialize", in, out); err != nil {
		return err
	}
	if m.caps.jacobians {
		if err := uf.(JacobianEvaluator).EvaluateJacobians(in, out); err != nil {
			return wrapUser("Initialize", m.phase, err)
		}
	}
	out.setInitializing(false)
	if err := m.initFunctionData(out); err != nil {
		return err
	}
	if err := m.checkValues("Initialize", in, out); err != nil {
		return err
	}

	if err := m.ComputeSparsityPatterns(in, out, bounds); err != nil {
		return err
	}
	// Nominal values again, so the container reflects the caller's point.
	if _, err := m.EvaluateUserFunction(in, out); err != nil {
		return err
	}

	if alg := out.Alg(); *m.hasFunctions.at(Algebraic) {
		if !alg.BoundsSet() {
			m.logger.Log("level", "warning", "subsys", "init", "phase", m.phase, "category", Algebraic, "message", "bounds were never set by the user function")
		} else {
			m.algLower = alg.LowerBounds()
			m.algUpper = alg.UpperBounds()
		}
	}
	m.checkIfNeedsFiniteDiff(out)

	// Exercise every block once at the nominal point.
	for _, f := range FuncTypes {
		if err := m.ComputeAll(f, in, out, true); err != nil {
			return err
		}
	}
	m.initialized = true
	m.logger.Log("level", "info", "subsys", "init", "phase", m.phase, "dynamics", m.NumFunctions(Dynamics), "algebraic", m.NumFunctions(Algebraic), "cost", *m.hasFunctions.at(Cost), "evaluations", m.evaluations)
	return nil
}

// initFunctionData records the number of functions per category and sizes the Jacobians and patterns.
func (m *PathFunctionManager) initFunctionData(out *PathFunctionContainer) error {
	for _, f := range FuncTypes {
		rec, err := out.Data(f)
		if err != nil {
			return err
		}
		*m.hasFunctions.at(f) = rec.HasUserFunction()
		if !rec.HasUserFunction() {
			continue
		}
		*m.numFunctions.at(f) = len(rec.values)
		rec.SetNumFunctions(len(rec.values))
		for _, v := range VarTypes {
			b := Block{f, v}
			*m.jacobian.at(b) = newBlock(*m.numFunctions.at(f), *m.numVars.at(v))
			*m.pattern.at(b) = newBlock(*m.numFunctions.at(f), *m.numVars.at(v))
			if rec.HasUserJacobian(v) {
				if err := m.checkShape(b, rec.Jacobian(v)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkShape ensures that the matrix is shaped for the provided block.
func (m *PathFunctionManager) checkShape(b Block, j mat.Matrix) error {
	r, c := dims(j)
	expR, expC := *m.numFunctions.at(b.Func), *m.numVars.at(b.Var)
	if r == 0 && c == 0 && expR*expC == 0 {
		return nil
	}
	if r != expR || c != expC {
		return errors.Wrapf(ErrDimension, "%s Jacobian is %dx%d, expected %dx%d", b, r, c, expR, expC)
	}
	return nil
}

// checkIfNeedsFiniteDiff flags every non empty block of a provided category without an
// analytic Jacobian.
func (m *PathFunctionManager) checkIfNeedsFiniteDiff(out *PathFunctionContainer) {
	for _, f := range FuncTypes {
		rec := mustData(out, f)
		for _, v := range VarTypes {
			*m.needsFD.at(Block{f, v}) = *m.hasFunctions.at(f) && *m.numVars.at(v) > 0 && !rec.HasUserJacobian(v)
		}
	}
}

// EvaluateUserFunction evaluates the path functions at in and returns the updated container.
func (m *PathFunctionManager) EvaluateUserFunction(in *FunctionInputData, out *PathFunctionContainer) (*PathFunctionContainer, error) {
	if in == nil || out == nil {
		return out, errors.Wrap(ErrNilCollaborator, "EvaluateUserFunction")
	}
	if !m.hasFunction {
		return out, nil
	}
	in.SetIsPerturbing(false)
	if err := m.evaluate("EvaluateUserFunction", in, out); err != nil {
		return out, err
	}
	return out, m.checkValues("EvaluateUserFunction", in, out)
}

// EvaluateUserJacobian fills every Jacobian block at in: the blocks the user does not provide
// are finite differenced, then the user fills the analytic ones. If computeFunctions is set,
// the functions are evaluated first, otherwise the container must hold the values at in.
// All categories are computed; f must be a valid category. While the manager initializes,
// only the user's analytic blocks are filled.
func (m *PathFunctionManager) EvaluateUserJacobian(in *FunctionInputData, out *PathFunctionContainer, f FuncType, computeFunctions bool) (*PathFunctionContainer, error) {
	if !f.Valid() {
		return out, wrapUnknownFunc(f)
	}
	if in == nil || out == nil {
		return out, errors.Wrap(ErrNilCollaborator, "EvaluateUserJacobian")
	}
	if !m.hasFunction {
		return out, nil
	}
	if computeFunctions {
		var err error
		if out, err = m.EvaluateUserFunction(in, out); err != nil {
			return out, err
		}
	}
	if !m.initializing && !m.initialized {
		return out, errors.Wrap(ErrNotInitialized, "EvaluateUserJacobian")
	}
	// While initializing, the dimensions are not known yet: only the user fills its blocks.
	if !m.initializing {
		for _, ft := range FuncTypes {
			if err := m.ComputeAll(ft, in, out, false); err != nil {
				return out, err
			}
		}
	}
	if m.caps.jacobians {
		if err := m.userFunc.(JacobianEvaluator).EvaluateJacobians(in, out); err != nil {
			return out, wrapUser("EvaluateUserJacobian", m.phase, err)
		}
		if m.initializing {
			return out, nil
		}
		for _, ft := range FuncTypes {
			if !*m.hasFunctions.at(ft) {
				continue
			}
			rec := mustData(out, ft)
			for _, v := range VarTypes {
				if !rec.HasUserJacobian(v) {
					continue
				}
				b := Block{ft, v}
				if err := m.checkShape(b, rec.Jacobian(v)); err != nil {
					return out, err
				}
				*m.jacobian.at(b) = denseCopy(rec.Jacobian(v))
			}
		}
	}
	return out, nil
}

// evaluate calls the user function and counts the evaluation.
func (m *PathFunctionManager) evaluate(op string, in *FunctionInputData, out *PathFunctionContainer) error {
	m.evaluations++
	return wrapUser(op, m.phase, m.userFunc.EvaluateFunctions(in, out))
}

// checkValues applies the non finite guard to the provided categories.
func (m *PathFunctionManager) checkValues(op string, in *FunctionInputData, out *PathFunctionContainer) error {
	if !m.checkFinite {
		return nil
	}
	for _, f := range FuncTypes {
		if !*m.hasFunctions.at(f) {
			continue
		}
		vals := mustData(out, f).values
		if i := firstNonFinite(vals); i >= 0 {
			return errors.Wrapf(ErrNonFinite, "%s: %s function %d = %g at t=%g", op, f, i, vals[i], in.Time())
		}
	}
	return nil
}

// step returns the finite difference step of the variable type.
func (m *PathFunctionManager) step(v VarType) float64 {
	if m.caps.perturber {
		if h := m.userFunc.(Perturber).Perturbation(v); h != 0 {
			return h
		}
	}
	return *m.perturbation.at(v)
}

// Evaluations returns the number of user function evaluations performed so far.
func (m *PathFunctionManager) Evaluations() uint64 { return m.evaluations }

// IsInitialized returns whether Initialize completed.
func (m *PathFunctionManager) IsInitialized() bool { return m.initialized }

// HasFunction returns whether a path function was provided.
func (m *PathFunctionManager) HasFunction() bool { return m.hasFunction }

// HasDynFunctions returns whether the path function provides dynamics.
func (m *PathFunctionManager) HasDynFunctions() bool { return *m.hasFunctions.at(Dynamics) }

// HasAlgFunctions returns whether the path function provides algebraic functions.
func (m *PathFunctionManager) HasAlgFunctions() bool { return *m.hasFunctions.at(Algebraic) }

// HasCostFunction returns whether the path function provides a cost integrand.
func (m *PathFunctionManager) HasCostFunction() bool { return *m.hasFunctions.at(Cost) }

// NumFunctions returns the number of functions of the category, zero if unknown.
func (m *PathFunctionManager) NumFunctions(f FuncType) int {
	if !f.Valid() {
		return 0
	}
	return *m.numFunctions.at(f)
}

// NumAlgFunctions returns the number of algebraic functions.
func (m *PathFunctionManager) NumAlgFunctions() int { return m.NumFunctions(Algebraic) }

// NumVars returns the number of variables of the type.
func (m *PathFunctionManager) NumVars(v VarType) int {
	if !v.Valid() {
		return 0
	}
	return *m.numVars.at(v)
}

// AlgFunctionsUpperBounds returns the algebraic upper bounds learned at initialization.
func (m *PathFunctionManager) AlgFunctionsUpperBounds() []float64 { return copyVec(m.algUpper) }

// AlgFunctionsLowerBounds returns the algebraic lower bounds learned at initialization.
func (m *PathFunctionManager) AlgFunctionsLowerBounds() []float64 { return copyVec(m.algLower) }

// NeedsFiniteDiff returns whether the block is finite differenced.
func (m *PathFunctionManager) NeedsFiniteDiff(f FuncType, v VarType) bool {
	if !f.Valid() || !v.Valid() {
		return false
	}
	return *m.needsFD.at(Block{f, v})
}

// Jacobian returns a copy of the last computed block, finite differenced or analytic.
func (m *PathFunctionManager) Jacobian(f FuncType, v VarType) (*mat.Dense, error) {
	if err := validBlock(f, v); err != nil {
		return nil, err
	}
	return denseCopy(*m.jacobian.at(Block{f, v})), nil
}

// Pattern returns a copy of the sparsity pattern of the block.
func (m *PathFunctionManager) Pattern(f FuncType, v VarType) (*mat.Dense, error) {
	if err := validBlock(f, v); err != nil {
		return nil, err
	}
	return denseCopy(*m.pattern.at(Block{f, v})), nil
}

// DynFunctionProperties returns a snapshot of the dynamics sparsity.
func (m *PathFunctionManager) DynFunctionProperties() UserFunctionProperties {
	return m.functionProperties(Dynamics, m.NumFunctions(Dynamics))
}

// AlgFunctionProperties returns a snapshot of the algebraic sparsity.
func (m *PathFunctionManager) AlgFunctionProperties() UserFunctionProperties {
	return m.functionProperties(Algebraic, m.NumFunctions(Algebraic))
}

// CostFunctionProperties returns a snapshot of the cost sparsity. The cost is always one function.
func (m *PathFunctionManager) CostFunctionProperties() UserFunctionProperties {
	return m.functionProperties(Cost, 1)
}

// FunctionProperties returns the snapshot of the provided category.
func (m *PathFunctionManager) FunctionProperties(f FuncType) (UserFunctionProperties, error) {
	switch f {
	case Dynamics:
		return m.DynFunctionProperties(), nil
	case Algebraic:
		return m.AlgFunctionProperties(), nil
	case Cost:
		return m.CostFunctionProperties(), nil
	}
	return UserFunctionProperties{}, wrapUnknownFunc(f)
}

func (m *PathFunctionManager) functionProperties(f FuncType, n int) UserFunctionProperties {
	p := NewUserFunctionProperties()
	for _, v := range VarTypes {
		p.SetJacobianPattern(v, *m.pattern.at(Block{f, v}))
		p.setHasVars(v, *m.numVars.at(v) > 0)
	}
	p.SetNumberOfFunctions(n)
	return p
}

// Clone returns a deep copy of this manager drawing from src, for use on another phase
// or goroutine. A nil src is seeded from the clock.
func (m *PathFunctionManager) Clone(src Source) *PathFunctionManager {
	c := *m
	for _, f := range FuncTypes {
		for _, v := range VarTypes {
			b := Block{f, v}
			*c.jacobian.at(b) = denseCopy(*m.jacobian.at(b))
			*c.pattern.at(b) = denseCopy(*m.pattern.at(b))
		}
	}
	c.algLower = copyVec(m.algLower)
	c.algUpper = copyVec(m.algUpper)
	if src == nil {
		src = newSource(0)
	}
	c.rng = src
	return &c
}

func validBlock(f FuncType, v VarType) error {
	if !f.Valid() {
		return wrapUnknownFunc(f)
	}
	if !v.Valid() {
		return wrapUnknownVar(v)
	}
	return nil
}

// mustData returns the record of a validated category.
func mustData(out *PathFunctionContainer, f FuncType) *FunctionOutputData {
	d, err := out.Data(f)
	if err != nil {
		panic(err)
	}
	return d
}
