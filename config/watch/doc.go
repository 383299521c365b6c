// Package watch reloads a configuration when its files change.
//
// A Watcher loads a config.Merge once, then watches the directory of every
// file source and every Docker secrets directory with fsnotify. Bursts of
// events are debounced into one reload through config.LoadMerged. A
// successful reload replaces Current and calls OnChange; a failed one keeps
// the previous value and calls OnError.
//
//	w, err := watch.New[AppConfig](m, watch.Config[AppConfig]{
//	    OnChange: func(cfg *AppConfig) { apply(cfg) },
//	})
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
package watch
