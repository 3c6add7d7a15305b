// Package engine is the calculator's input state machine.
//
// A State is a plain value. Every key press is an Event, and Transition
// returns the next State without touching the previous one, so hosts (HTTP
// sessions, the terminal front end, tests) own exactly one State each and
// re-render from its Display and History after every call.
//
// The engine never fails: division by zero and other non-finite results are
// shown as the "Error" display and the next digit or clear recovers.
package engine
