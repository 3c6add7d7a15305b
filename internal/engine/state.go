package engine

// MaxDisplayLen bounds how many characters digit and decimal entry may grow the display to.
const MaxDisplayLen = 16

// State is the complete calculator state. Hosts own one value per logical
// calculator and replace it with the result of every Transition.
type State struct {
	// Accumulator is the first operand, or the running result after an operation.
	Accumulator *float64
	// Pending is the second operand, captured when Equals is evaluated.
	Pending  *float64
	Operator Operator

	EnteringSecondOperand bool
	JustEvaluated         bool

	// OperandEntered is set once a digit or decimal point is typed after an
	// operator, so that re-pressing an operator swaps it instead of chaining.
	OperandEntered bool

	// Display is the buffer shown to the user and the source of the next operand.
	Display string
	// History traces the last started or completed operation. Display only.
	History string
}

// New returns a freshly reset state.
func New() State {
	return State{Display: "0"}
}

// Value parses the display as the current operand.
func (s State) Value() float64 {
	return ParseDisplay(s.Display)
}

// Clone returns a copy that shares no pointers with s.
func (s State) Clone() State {
	out := s
	out.Accumulator = cloneNumber(s.Accumulator)
	out.Pending = cloneNumber(s.Pending)
	return out
}

// freshStart reports whether the next entry should replace a just-computed
// result, i.e. Equals ran and no operator has been chosen since.
func (s State) freshStart() bool {
	return s.JustEvaluated && !s.EnteringSecondOperand
}

func number(v float64) *float64 {
	return &v
}

func cloneNumber(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return number(*p)
}
