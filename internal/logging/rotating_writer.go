package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotatingFile is an io.WriteCloser that caps the active log file at
// maxBytes and keeps a bounded number of date-stamped backups next to it.
type rotatingFile struct {
	mu       sync.Mutex
	out      *os.File
	path     string
	maxBytes int64
	keep     int
	written  int64
}

func openRotatingFile(path string, maxBytes int64, keep int) (*rotatingFile, error) {
	r := &rotatingFile{path: path, maxBytes: maxBytes, keep: keep}

	if err := r.reopen(); err != nil {
		return nil, err
	}
	info, err := r.out.Stat()
	if err != nil {
		_ = r.out.Close()
		return nil, err
	}
	r.written = info.Size()

	return r, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.written+int64(len(p)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.out.Write(p)
	r.written += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.out == nil {
		return nil
	}
	return r.out.Close()
}

func (r *rotatingFile) reopen() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	r.out = f
	return nil
}

// rotate drops the oldest backup, shifts the rest up one slot, moves the
// active file into slot 1 and starts a fresh one.
func (r *rotatingFile) rotate() error {
	if r.out != nil {
		if err := r.out.Close(); err != nil {
			return err
		}
	}

	_ = os.Remove(r.slot(r.keep))
	for i := r.keep - 1; i >= 1; i-- {
		if _, err := os.Stat(r.slot(i)); err != nil {
			continue
		}
		if err := os.Rename(r.slot(i), r.slot(i+1)); err != nil {
			return err
		}
	}

	// The active file may not exist yet when the first write overflows
	_ = os.Rename(r.path, r.slot(1))

	if err := r.reopen(); err != nil {
		return err
	}
	r.written = 0
	return nil
}

// slot builds the backup name for an index, stamped with the rotation
// date so backups from different days stay distinguishable.
func (r *rotatingFile) slot(i int) string {
	ext := filepath.Ext(r.path)
	stem := r.path[:len(r.path)-len(ext)]
	return fmt.Sprintf("%s-%s.%d%s", stem, time.Now().Format("20060102"), i, ext)
}

var _ io.WriteCloser = (*rotatingFile)(nil)
