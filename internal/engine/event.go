package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownEvent is returned for an event kind the engine does not handle.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidDigit is returned when a digit event carries anything but 0-9.
	ErrInvalidDigit = errors.New("invalid digit")
	// ErrUnknownOperator is returned for operator symbols outside the four supported ones.
	ErrUnknownOperator = errors.New("unknown operator")
)

// Kind enumerates the events the engine consumes.
type Kind int

const (
	KindDigit Kind = iota + 1
	KindDecimal
	KindNegate
	KindBackspace
	KindClearEntry
	KindClearAll
	KindChooseOperator
	KindEquals
)

var kindNames = map[Kind]string{
	KindDigit:          "digit",
	KindDecimal:        "decimal",
	KindNegate:         "negate",
	KindBackspace:      "backspace",
	KindClearEntry:     "clear_entry",
	KindClearAll:       "clear_all",
	KindChooseOperator: "operator",
	KindEquals:         "equals",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves the wire name of an event kind, e.g. "digit" or "clear_all".
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// Event is one input to Transition. Digit is only meaningful for KindDigit and
// Operator only for KindChooseOperator.
type Event struct {
	Kind     Kind
	Digit    byte
	Operator Operator
}

// Digit types d, which must be '0' through '9'.
func Digit(d byte) Event { return Event{Kind: KindDigit, Digit: d} }

// Decimal types the decimal point.
func Decimal() Event { return Event{Kind: KindDecimal} }

// Negate toggles the sign of the display.
func Negate() Event { return Event{Kind: KindNegate} }

// Backspace drops the last typed character.
func Backspace() Event { return Event{Kind: KindBackspace} }

// ClearEntry resets the display and keeps the pending operation.
func ClearEntry() Event { return Event{Kind: KindClearEntry} }

// ClearAll resets the whole calculator.
func ClearAll() Event { return Event{Kind: KindClearAll} }

// ChooseOperator selects op, resolving any chained operation first.
func ChooseOperator(op Operator) Event { return Event{Kind: KindChooseOperator, Operator: op} }

// Equals evaluates the pending operation.
func Equals() Event { return Event{Kind: KindEquals} }

// Validate reports whether e carries a payload Transition will act on.
func (e Event) Validate() error {
	switch e.Kind {
	case KindDigit:
		if e.Digit < '0' || e.Digit > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidDigit, e.Digit)
		}
	case KindChooseOperator:
		if !e.Operator.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownOperator, string(e.Operator))
		}
	case KindDecimal, KindNegate, KindBackspace, KindClearEntry, KindClearAll, KindEquals:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, e.Kind)
	}
	return nil
}

func (e Event) String() string {
	switch e.Kind {
	case KindDigit:
		return "digit(" + string(e.Digit) + ")"
	case KindChooseOperator:
		return "operator(" + string(e.Operator) + ")"
	default:
		return e.Kind.String()
	}
}
