// Package rules implements the deterministic post-processing layer applied to
// raw visitor predictions. Rules form an ordered list of (name, predicate,
// transform) tuples folded over the running value: every rule whose predicate
// holds is applied to the output of the previous one. A silent floor of
// MinimumVisitors is applied last and never appears in the audit trail.
package rules
