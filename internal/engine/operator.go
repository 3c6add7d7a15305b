package engine

import (
	"fmt"
	"strings"
)

// Operator is one of the four arithmetic symbols shown on the keypad.
// The zero value means no operator is chosen.
type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "−"
	Multiply Operator = "×"
	Divide   Operator = "÷"
)

// Valid reports whether op is one of the four recognised symbols.
func (op Operator) Valid() bool {
	switch op {
	case Add, Subtract, Multiply, Divide:
		return true
	}
	return false
}

// Name returns the lower-case operation name, e.g. "add".
func (op Operator) Name() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	}
	return ""
}

// ParseOperator accepts the display symbols, their ASCII keyboard forms and
// the operation names.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add":
		return Add, nil
	case "−", "-", "subtract":
		return Subtract, nil
	case "×", "*", "x", "multiply":
		return Multiply, nil
	case "÷", "/", "divide":
		return Divide, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}
