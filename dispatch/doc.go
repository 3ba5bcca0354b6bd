// Package dispatch implements generic functions with multiple dispatch and
// standard method combination.
//
// A GenericFunction starts with no behavior. Methods are attached with a
// textual signature ("Array,*") and a role: primary, before, after or
// around. On each call every argument is classified, the applicable
// methods of each role are ranked from most to least specific, and the
// ranked lists are combined:
//
//	around (most specific first, chained with CallNextMethod)
//	  before (all, most specific first)
//	  primary (most specific, chained with CallNextMethod)
//	  after (all, least specific first)
//
// Resolve precomputes the ranked lists for a set of argument types and
// caches the resulting Dispatcher until the method set changes.
package dispatch
