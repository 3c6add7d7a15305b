package engine

import "strings"

// Transition applies e to s and returns the next state. It is total: invalid
// events leave the state unchanged and arithmetic faults surface as the
// "Error" display.
func Transition(s State, e Event) State {
	if e.Validate() != nil {
		return s
	}

	next := s.Clone()
	switch e.Kind {
	case KindDigit:
		next.appendDigit(e.Digit)
	case KindDecimal:
		next.appendDecimal()
	case KindNegate:
		next.negate()
	case KindBackspace:
		next.backspace()
	case KindClearEntry:
		next.Display = "0"
	case KindClearAll:
		next = New()
	case KindChooseOperator:
		next.chooseOperator(e.Operator)
	case KindEquals:
		next.equals()
	}
	return next
}

// Run folds events over s in order.
func Run(s State, events ...Event) State {
	for _, e := range events {
		s = Transition(s, e)
	}
	return s
}

func (s *State) appendDigit(d byte) {
	if s.freshStart() {
		s.Display = "0"
	}
	s.JustEvaluated = false
	s.OperandEntered = s.EnteringSecondOperand

	switch {
	case s.Display == "0":
		s.Display = string(d)
	case len(s.Display) < MaxDisplayLen:
		s.Display += string(d)
	}
}

func (s *State) appendDecimal() {
	if s.freshStart() {
		s.Display = "0"
	}
	s.JustEvaluated = false
	s.OperandEntered = s.EnteringSecondOperand

	if strings.Contains(s.Display, ".") || len(s.Display) >= MaxDisplayLen {
		return
	}
	if s.Display == "" {
		s.Display = "0"
	}
	s.Display += "."
}

func (s *State) negate() {
	switch {
	case strings.HasPrefix(s.Display, "-"):
		s.Display = s.Display[1:]
	case s.Display != "0":
		s.Display = "-" + s.Display
	}
}

func (s *State) backspace() {
	if s.freshStart() {
		return
	}
	d := s.Display
	if len(d) <= 1 || (len(d) == 2 && d[0] == '-') {
		s.Display = "0"
		return
	}
	s.Display = d[:len(d)-1]
}

func (s *State) chooseOperator(op Operator) {
	v := s.Value()

	switch {
	case s.Accumulator == nil:
		s.Accumulator = number(v)
	case s.EnteringSecondOperand && s.OperandEntered:
		s.Accumulator = number(Apply(*s.Accumulator, v, s.Operator))
	default:
		// operator swapped before the second operand was typed
	}

	s.Operator = op
	s.EnteringSecondOperand = true
	s.OperandEntered = false
	s.JustEvaluated = false
	s.History = Format(*s.Accumulator) + " " + string(op)
	s.Display = "0"
}

func (s *State) equals() {
	if s.Operator == "" {
		return
	}

	var v float64
	if s.JustEvaluated && s.Pending != nil {
		// repeated equals re-applies the last operand
		v = *s.Pending
	} else {
		v = s.Value()
	}
	s.Pending = number(v)

	var acc float64
	if s.Accumulator != nil {
		acc = *s.Accumulator
	}
	result := Apply(acc, v, s.Operator)

	s.History = Format(acc) + " " + string(s.Operator) + " " + Format(v) + " ="
	s.Display = Format(result)
	s.Accumulator = number(result)
	s.EnteringSecondOperand = false
	s.OperandEntered = false
	s.JustEvaluated = true
}
