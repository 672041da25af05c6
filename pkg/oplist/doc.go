// Package oplist tracks in-flight operations so that late completions can be
// told apart from current ones, and so that every outstanding caller can be
// failed exactly once on a hard disconnect.
package oplist
