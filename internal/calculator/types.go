package calculator

// CalcRequest is the JSON body for binary operations (add, subtract, multiply, divide).
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for binary operations. Result is omitted
// when the computation is not finite; Display then reads "Error".
type CalcResponse struct {
	Operation string   `json:"operation"`
	A         float64  `json:"a"`
	B         float64  `json:"b"`
	Result    *float64 `json:"result,omitempty"`
	Display   string   `json:"display"`
}

// ChainStep describes a single step in a chained calculation.
type ChainStep struct {
	Op    string  `json:"op"`    // operation name or symbol, e.g. "add" or "×"
	Value float64 `json:"value"` // the operand applied with the running total
}

// ChainRequest is the JSON body for POST /calculator/chain.
type ChainRequest struct {
	Initial float64     `json:"initial"`
	Steps   []ChainStep `json:"steps"`
}

// ChainResponse is the JSON response for POST /calculator/chain.
type ChainResponse struct {
	Initial float64       `json:"initial"`
	Steps   []ChainResult `json:"steps"`
	Result  *float64      `json:"result,omitempty"`
	Display string        `json:"display"`
}

// ChainResult records one executed step.
type ChainResult struct {
	Op      string  `json:"op"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// EventRequest is one engine event on the wire, e.g.
// {"type":"digit","digit":"7"} or {"type":"operator","operator":"+"}.
type EventRequest struct {
	Type     string `json:"type"`
	Digit    string `json:"digit,omitempty"`
	Operator string `json:"operator,omitempty"`
}

// EventsRequest is the JSON body for POST /calculator/sessions/{id}/events.
type EventsRequest struct {
	Events []EventRequest `json:"events"`
}

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// SessionResponse is the observable state of a session.
type SessionResponse struct {
	ID                    string `json:"id"`
	Display               string `json:"display"`
	History               string `json:"history"`
	Operator              string `json:"operator,omitempty"`
	EnteringSecondOperand bool   `json:"entering_second_operand"`
	JustEvaluated         bool   `json:"just_evaluated"`
	Version               int64  `json:"version"`
	IgnoredKeys           int    `json:"ignored_keys,omitempty"`
}
