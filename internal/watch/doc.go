// Package watch polls directories for changed template files.
//
// Polling keeps the watcher portable and free of platform notification
// APIs. Each tick walks the watched paths, compares modification times
// against the previous scan and reports every difference as one batch:
//
//	w := watch.New(watch.Config{
//	    Paths:      []string{"templates"},
//	    Extensions: tree.Extensions,
//	})
//	w.OnChange(func(changes []watch.Change) {
//	    // reload templates
//	})
//	go w.Start(ctx)
package watch
