// Package loader extracts a fixed set of descriptors from a class in one
// call. Each rule names a descriptor type and a LoadMode:
//
//	l := loader.New(index).
//	    Add("example.com/app/attrs.Table", loader.SingleValue, true, nil).
//	    Add("example.com/app/attrs.Route", loader.PerMethodMapping, false, nil)
//
//	data, err := l.Load("example.com/app/users.Handler")
//
// Rules that find nothing are left out of the result. A Transform, for
// example one built by ExprTransform, reshapes the data a rule found before
// it is stored.
package loader
