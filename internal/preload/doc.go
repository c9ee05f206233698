// Package preload runs namespace loaders over every class of their
// namespace and answers point lookups from the result.
//
//	cache := preload.New(index, logger)
//	cache.AddNamespace(map[string]*loader.Loader{
//	    "example.com/app/models": models,
//	})
//	if err := cache.Load(ctx); err != nil {
//	    return err
//	}
//	table, ok := cache.Get("example.com/app/models.User", tableType)
//
// Load populates the cache once. Concurrent first calls wait for the
// loading call and then see the complete data.
package preload
