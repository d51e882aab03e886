// Package fs provides the filesystem abstraction mchi's CLI uses to read
// and durably write its JSONC config file.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] package
//   - [AtomicWriter]: rename-based durable writes built on top of [FS]
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile(".mchi.json")
//	if err != nil {
//	    return err
//	}
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.Seeker], or [io.Closer].
//
// The intent is os-like behavior: implementations must behave like [os.File],
// including that [File.Fd] returns a valid OS file descriptor until the file
// is closed.
//
// Note: [File] includes [io.Writer] even for read-only handles. Like [os.File],
// implementations should return an error from Write when the file wasn't opened
// for writing.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// Example:
//
//	fsys := fs.NewReal()
//	f, _ := fsys.Open("data.txt")
//	defer f.Close()
//
//	// Use with bufio
//	scanner := bufio.NewScanner(f)
//
//	// Use with io
//	io.Copy(os.Stdout, f)
//
//	// Use with encoding/json
//	json.NewDecoder(f).Decode(&v)
type File interface {
	// Embedded interfaces from [io] package.
	// These provide Read, Write, Close, and Seek methods.
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Chmod changes the mode of the file. See [os.File.Chmod].
	Chmod(mode os.FileMode) error
}

// FS defines the filesystem operations mchi's config loader and
// [AtomicWriter] need: reading the existing config, and writing a new one
// through a temp-file-then-rename.
//
// Implementations in this package include:
//   - [Real]: production use, wraps [os] package
//
// All methods mirror their [os] package equivalents, which lets callers
// depend on [FS] instead of [os] directly and substitute a test double.
//
// Paths use OS semantics (like the os package and path/filepath), not the slash-separated
// paths used by the standard library io/fs package.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// Open opens a file for reading. Used by [AtomicWriter] to fsync a
	// directory after a rename. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. Used by
	// [AtomicWriter] to create its exclusive temp file. See [os.OpenFile].
	//
	// Common flags: [os.O_RDONLY], [os.O_WRONLY], [os.O_RDWR],
	// [os.O_APPEND], [os.O_CREATE], [os.O_EXCL], [os.O_TRUNC].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary. See [os.WriteFile].
	//
	// Note: WriteFile is not atomic or durable. Errors or crashes can leave a
	// partially written or empty file. Config writes use [AtomicWriter]
	// instead; this method exists for call sites that don't need that.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// Used before writing the global config file, whose parent directory
	// may not exist yet.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	// Used by [AtomicWriter] to clean up a temp file after a failed write.
	Remove(path string) error

	// RemoveAll deletes a path and any children. See [os.RemoveAll].
	// No error if path doesn't exist.
	RemoveAll(path string) error

	// Rename moves/renames a file or directory. See [os.Rename].
	// Atomic on the same filesystem; this is what makes [AtomicWriter]'s
	// writes atomic.
	Rename(oldpath, newpath string) error
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
