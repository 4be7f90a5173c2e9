// Package assert provides panic-on-violation checks for invariants that a
// legal sequence of public calls must never break.
package assert

import "fmt"

// Assert panics with a formatted diagnostic if condition is false.
//
// Use it only for structural invariants (children/key count, child index
// bounds, ...) that would indicate a bug in the tree maintenance code
// itself, never for conditions reachable from ordinary public-API misuse.
func Assert(condition bool, msg string, v ...any) {
	if !condition {
		panic("bptree: corrupted tree state: " + fmt.Sprintf(msg, v...))
	}
}
