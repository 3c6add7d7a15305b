package engine

// KeyEvent maps a host key name, as reported by a browser keydown or a
// terminal token, onto an engine event. Unmapped keys report false.
func KeyEvent(key string) (Event, bool) {
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Digit(key[0]), true
	}

	switch key {
	case ".":
		return Decimal(), true
	case "+":
		return ChooseOperator(Add), true
	case "-":
		return ChooseOperator(Subtract), true
	case "*", "x", "X":
		return ChooseOperator(Multiply), true
	case "/":
		return ChooseOperator(Divide), true
	case "Enter", "=":
		return Equals(), true
	case "Backspace":
		return Backspace(), true
	case "c", "C":
		return ClearEntry(), true
	case "a", "A":
		return ClearAll(), true
	case "_":
		return Negate(), true
	}
	return Event{}, false
}
