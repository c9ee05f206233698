// Package parse composes discovery, presence filtering and caching behind
// an immutable configuration value.
//
// # Basic Usage
//
//	p := parse.New("example.com/app/attrs.Route", index, index).
//	    WithCache(store)
//
//	// Classes under the roots that use the descriptor anywhere
//	usages, err := p.FindUsages(ctx, "example.com/app/http")
//
//	// Descriptors on one class, walking embedded parents
//	result, err := p.On("example.com/app/http.UserHandler").Ascend().Get(ctx)
//
//	// Descriptors on the methods of one class
//	result, err := p.On("example.com/app/http.UserHandler").InMethods(ctx)
//
//	// Everything under the roots, cached as one unit
//	targets, err := p.All(ctx, "example.com/app/http")
//
// # Caching
//
// Keys come from CacheKey: the descriptor type, then "ascend:" when ascent
// is enabled, then a hash of the target, then a hash of the roots joined
// with "|". Roots are not sorted, so callers pass them in a stable order.
// Each operation stores under its own namespace of that key. Cache failures
// never fail an operation; they are logged and treated as misses.
//
// Nothing is invalidated automatically. The per-class entries written by Get
// and InMethods and the aggregate written by All are independent and can
// disagree after the source changes.
package parse
