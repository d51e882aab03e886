package mchi

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Close flushes the mapping to disk and releases it. Close is idempotent:
// calling it again after a successful close is a no-op. No method other
// than Close may be called on an Index afterward.
func (idx *Index) Close() error {
	if idx.closed {
		return nil
	}
	idx.closed = true

	var errs []error

	if !idx.readOnly {
		if err := unix.Msync(idx.data, unix.MS_SYNC); err != nil {
			errs = append(errs, fmt.Errorf("msync: %w", err))
		}
	}
	if err := unix.Munmap(idx.data); err != nil {
		errs = append(errs, fmt.Errorf("munmap: %w", err))
	}
	idx.data = nil

	if err := idx.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
