package params

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"settings-service/internal/logger"

	"github.com/rjeczalik/notify"
	"golang.org/x/sys/unix"
)

const lockFileName = ".lock"

// FileEngine keeps one file per key in dir, the layout used on the device
// (/data/params/d/<Key>). Writes are atomic renames under an exclusive flock.
type FileEngine struct {
	dir    string
	logger *logger.Logger

	events chan notify.EventInfo
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFileEngine(dir string, l *logger.Logger) (*FileEngine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create params dir %s: %w", dir, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FileEngine{
		dir:    dir,
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid parameter key %q", key)
	}
	return nil
}

func (f *FileEngine) Get(key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", key, err)
	}
	return data, true, nil
}

func (f *FileEngine) withLock(fn func() error) error {
	lock, err := os.OpenFile(filepath.Join(f.dir, lockFileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer lock.Close()

	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("flock: %w", err)
	}
	defer unix.Flock(int(lock.Fd()), unix.LOCK_UN)

	return fn()
}

func (f *FileEngine) Put(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := f.withLock(func() error {
		tmp, err := os.CreateTemp(f.dir, ".tmp_"+key+"_*")
		if err != nil {
			return err
		}
		tmpName := tmp.Name()
		if _, err := tmp.Write(value); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return err
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpName)
			return err
		}
		if err := os.Rename(tmpName, f.Path(key)); err != nil {
			os.Remove(tmpName)
			return err
		}
		return f.syncDir()
	})
	if err != nil {
		return unavailable("put", key, err)
	}
	return nil
}

func (f *FileEngine) syncDir() error {
	d, err := os.Open(f.dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func (f *FileEngine) Remove(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := f.withLock(func() error {
		if err := os.Remove(f.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return f.syncDir()
	})
	if err != nil {
		return unavailable("remove", key, err)
	}
	return nil
}

func (f *FileEngine) List() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, unavailable("list", "", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileEngine) Path(key string) string {
	return filepath.Join(f.dir, key)
}

// Subscribe starts an inotify-backed watch on the params directory.
func (f *FileEngine) Subscribe(fn func(string)) error {
	if f.events != nil {
		return fmt.Errorf("file engine already subscribed")
	}
	f.events = make(chan notify.EventInfo, 64)
	if err := notify.Watch(f.dir, f.events, notify.Create, notify.Write, notify.Remove, notify.Rename); err != nil {
		f.events = nil
		return unavailable("watch", "", err)
	}
	f.logger.Infof("Watching %s for parameter changes", f.dir)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-f.ctx.Done():
				return
			case ei := <-f.events:
				name := filepath.Base(ei.Path())
				if strings.HasPrefix(name, ".") {
					continue
				}
				f.logger.Debugf("params change: %s (%v)", name, ei.Event())
				fn(name)
			}
		}
	}()
	return nil
}

func (f *FileEngine) Close() error {
	if f.events != nil {
		notify.Stop(f.events)
	}
	f.cancel()
	f.wg.Wait()
	return nil
}
