package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func Test_RealFS_Exists_Reports_Whether_A_Path_Exists(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		setup func(t *testing.T, dir string) string
		want  bool
	}{
		{
			name: "MissingPath",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "does-not-exist.txt")
			},
			want: false,
		},
		{
			name: "File",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "exists.txt")
				if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return path
			},
			want: true,
		},
		{
			name: "Directory",
			setup: func(t *testing.T, dir string) string {
				subdir := filepath.Join(dir, "subdir")
				if err := os.MkdirAll(subdir, 0o755); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return subdir
			},
			want: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			real := NewReal()
			path := tc.setup(t, t.TempDir())

			exists, err := real.Exists(path)
			if !errors.Is(err, nil) {
				t.Fatalf("err=%v, want nil", err)
			}
			if exists != tc.want {
				t.Fatalf("exists=%v, want=%v", exists, tc.want)
			}
		})
	}
}
