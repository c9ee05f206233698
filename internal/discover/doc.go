// Package discover finds descriptor instances on a single class or on its
// methods.
//
// Class-level discovery can ascend the parent chain. For a repeatable
// descriptor every level contributes, nearest first; for a non-repeatable one
// the walk stops at the first level that declares anything:
//
//	result := discover.OnClass(in, "example.com/app/attrs.Table", "example.com/app.Admin", true, false)
//	if result == nil {
//	    // neither Admin nor its ancestors carry a Table
//	}
//
// Method-level discovery never ascends; inherited methods are visible only
// when the Introspector lists them. Both discoverers deduplicate value-equal
// instances and report empty discovery as nil.
package discover
