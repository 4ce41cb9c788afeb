package models

// FundsChange describes a balance movement that has been clamped at zero.
// Applied is what was actually removed or added, which may be less than
// the requested amount when the balance ran out.
type FundsChange struct {
	Before  int64
	After   int64
	Applied int64
}
