package config

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the workspace-local settings file for changes and invokes
// onChange with freshly reloaded settings whenever it's written. It runs
// until the returned stop function is called or watching fails to start.
func Watch(workspacePath string, onChange func(*Settings)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(localSettingsPath(workspacePath))
	if err := watcher.Add(dir); err != nil {
		// The .polyglotls directory may not exist yet; that's fine, there
		// is simply nothing to watch until a settings file is saved there.
		watcher.Close()
		return func() {}, nil
	}

	done := make(chan struct{})
	go func() {
		target := localSettingsPath(workspacePath)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				settings, err := Load(workspacePath)
				if err != nil {
					log.Printf("[config] reload %s failed: %v", target, err)
					continue
				}
				onChange(settings)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watch error: %v", watchErr)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
