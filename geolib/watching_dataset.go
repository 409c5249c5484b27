package geolib

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchSettleTime = 200 * time.Millisecond

// DatasetLoader opens a fresh dataset instance.
type DatasetLoader func() (Dataset, error)

// WatchingDataset reloads a dataset if its file was changed. Each load
// produces a new immutable instance: a current one is swapped and the
// old one is closed afterwards.
//
// A failed reload keeps the previous dataset.
type WatchingDataset struct {
	name           string
	path           string
	loader         DatasetLoader
	logger         Logger
	watcher        *fsnotify.Watcher
	current        Dataset
	rwmutex        sync.RWMutex
	callbacks      []func()
	callbacksMutex sync.Mutex
	done           chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

func (w *WatchingDataset) Name() string {
	return w.name
}

func (w *WatchingDataset) Lookup(ip net.IP) (LookupResult, error) {
	w.rwmutex.RLock()
	defer w.rwmutex.RUnlock()

	return w.current.Lookup(ip)
}

func (w *WatchingDataset) Close() error {
	var err error

	w.stopOnce.Do(func() {
		close(w.done)

		err = w.watcher.Close()

		w.wg.Wait()

		w.rwmutex.Lock()
		defer w.rwmutex.Unlock()

		if closeErr := w.current.Close(); closeErr != nil {
			err = closeErr
		}
	})

	return err
}

// OnReload registers a callback for successful reloads.
func (w *WatchingDataset) OnReload(callback func()) {
	w.callbacksMutex.Lock()
	defer w.callbacksMutex.Unlock()

	w.callbacks = append(w.callbacks, callback)
}

// Reload loads a new dataset and swaps it with a current one.
func (w *WatchingDataset) Reload() error {
	dataset, err := w.loader()
	if err != nil {
		metricReloadsTotal.WithLabelValues(w.name, metricResultError).Inc()

		return fmt.Errorf("cannot reload %s: %w", w.path, err)
	}

	w.rwmutex.Lock()
	old := w.current
	w.current = dataset
	w.rwmutex.Unlock()

	metricReloadsTotal.WithLabelValues(w.name, "ok").Inc()

	w.callbacksMutex.Lock()
	callbacks := append([]func(){}, w.callbacks...)
	w.callbacksMutex.Unlock()

	for _, callback := range callbacks {
		callback()
	}

	if err := old.Close(); err != nil {
		return fmt.Errorf("cannot close previous dataset: %w", err)
	}

	return nil
}

func (w *WatchingDataset) watch() {
	defer w.wg.Done()

	timer := time.NewTimer(watchSettleTime)
	timer.Stop()

	defer timer.Stop()

	absPath, _ := filepath.Abs(w.path)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			eventPath, _ := filepath.Abs(event.Name)

			if eventPath == absPath && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				timer.Reset(watchSettleTime)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.logger.UpdateError(w.name, err)
		case <-timer.C:
			if err := w.Reload(); err != nil {
				w.logger.UpdateError(w.name, err)
			} else {
				w.logger.UpdateInfo(w.name, "dataset was reloaded")
			}
		}
	}
}

// NewWatchingDataset loads a dataset and starts a watcher for its
// file. A parent directory is watched so atomic renames are noticed
// as well.
func NewWatchingDataset(path string, loader DatasetLoader, logger Logger) (*WatchingDataset, error) {
	if loader == nil {
		return nil, errors.New("loader is not defined")
	}

	dataset, err := loader()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		dataset.Close()

		return nil, fmt.Errorf("cannot create a file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		dataset.Close()

		return nil, fmt.Errorf("cannot watch %s: %w", path, err)
	}

	rv := &WatchingDataset{
		name:    dataset.Name(),
		path:    path,
		loader:  loader,
		logger:  logger,
		watcher: watcher,
		current: dataset,
		done:    make(chan struct{}),
	}

	rv.wg.Add(1)

	go rv.watch()

	return rv, nil
}
