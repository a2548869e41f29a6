package rpmts

// SolveFunc is the dependency-loop-breaking solve callback: given an
// element with an unresolved requirement, it returns 0 if it supplied a
// solution, non-zero if it didn't. The solver itself is out of scope for
// this core; the set only stores and invokes the hook, the way the
// original wires rpmtsSolve through the transaction set rather than
// through the solver.
type SolveFunc func(ts *TransactionSet, te *Element, data interface{}) int

// SetSolveCallback installs the solve callback and its user data.
func (ts *TransactionSet) SetSolveCallback(fn SolveFunc, data interface{}) {
	ts.solveFn = fn
	ts.solveData = data
}

// Solve invokes the set's solve callback for te, or returns non-zero
// ("no solution offered") when none is installed.
func (ts *TransactionSet) Solve(te *Element) int {
	if ts.solveFn == nil {
		return 1
	}
	return ts.solveFn(ts, te, ts.solveData)
}
