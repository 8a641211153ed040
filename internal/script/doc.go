// Package script holds the RadonScript representation: an ordered list of
// calls whose higher-order arguments point into an arena of subscripts.
//
// A subscript can only reference subscripts that were added to the arena
// before it, so every script is acyclic by construction. Size and nesting are
// bounded by Limits and checked while the script is built, never at run time.
package script
