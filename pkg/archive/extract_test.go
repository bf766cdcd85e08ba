package archive

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "archive_test",
		Level: hclog.Trace,
	})
}

func buildZip(t *testing.T, entries ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if name[len(name)-1] != '/' {
			if _, err := w.Write([]byte("content of " + name)); err != nil {
				t.Fatalf("write %s: %v", name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(files)
	return files
}

func TestExtractExclusion(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		exclude  []string
		expected []string
	}{
		{
			name:     "ancestor excluded",
			entries:  []string{"a/b.so", "a/c.so", "d/e.so"},
			exclude:  []string{"a"},
			expected: []string{"d/e.so"},
		},
		{
			name:     "trailing slash exclusion",
			entries:  []string{"META-INF/", "META-INF/MANIFEST.MF", "liblwjgl.so"},
			exclude:  []string{"META-INF/"},
			expected: []string{"liblwjgl.so"},
		},
		{
			name:     "exact file excluded",
			entries:  []string{"x/keep.so", "x/drop.so"},
			exclude:  []string{"x/drop.so"},
			expected: []string{"x/keep.so"},
		},
		{
			name:     "prefix is not an ancestor",
			entries:  []string{"ab/c.so", "a/d.so"},
			exclude:  []string{"a"},
			expected: []string{"ab/c.so"},
		},
		{
			name:     "no exclusions",
			entries:  []string{"one.so", "nested/two.so"},
			expected: []string{"nested/two.so", "one.so"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := t.TempDir()
			if err := Extract(buildZip(t, tt.entries...), dest, tt.exclude, testLogger()); err != nil {
				t.Fatalf("Extract: %v", err)
			}
			got := listFiles(t, dest)
			if len(got) != len(tt.expected) {
				t.Fatalf("files = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("files[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestExtractWritesContent(t *testing.T) {
	dest := t.TempDir()
	if err := Extract(buildZip(t, "dir/", "dir/lib.so"), dest, nil, testLogger()); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "dir", "lib.so"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "content of dir/lib.so" {
		t.Errorf("content = %q", data)
	}

	// Extracting again overwrites in place.
	if err := Extract(buildZip(t, "dir/lib.so"), dest, nil, testLogger()); err != nil {
		t.Fatalf("second Extract: %v", err)
	}
}

func buildZipModes(t *testing.T, modes map[string]os.FileMode) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, mode := range modes {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractReadOnlyEntryTwice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	data := buildZipModes(t, map[string]os.FileMode{"lib.so": 0o444, "bin/helper": 0o555})
	dest := t.TempDir()

	for i := 0; i < 2; i++ {
		if err := Extract(data, dest, nil, testLogger()); err != nil {
			t.Fatalf("Extract #%d: %v", i+1, err)
		}
	}

	tests := map[string]os.FileMode{"lib.so": 0o644, "bin/helper": 0o755}
	for name, want := range tests {
		info, err := os.Stat(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s mode = %o, want %o", name, got, want)
		}
	}

	// A read-only file from an older extraction is replaced, not reopened.
	stale := filepath.Join(dest, "lib.so")
	if err := os.Chmod(stale, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := Extract(data, dest, nil, testLogger()); err != nil {
		t.Fatalf("Extract over read-only file: %v", err)
	}
	got, err := os.ReadFile(stale)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "content of lib.so" {
		t.Errorf("content = %q", got)
	}
}

func TestExtractRejectsUnsafePaths(t *testing.T) {
	for _, name := range []string{"../evil.so", "a/../../evil.so", "/abs/evil.so", "C:/evil.so"} {
		t.Run(name, func(t *testing.T) {
			parent := t.TempDir()
			dest := filepath.Join(parent, "natives")
			err := Extract(buildZip(t, "ok.so", name), dest, nil, testLogger())

			var archiveErr *crerrors.ArchiveError
			if !errors.As(err, &archiveErr) {
				t.Fatalf("err = %v, want ArchiveError", err)
			}
			if archiveErr.Kind != crerrors.KindUnsafePath {
				t.Errorf("Kind = %v, want %v", archiveErr.Kind, crerrors.KindUnsafePath)
			}
			if _, err := os.Stat(filepath.Join(parent, "evil.so")); err == nil {
				t.Error("entry escaped destination")
			}
		})
	}
}

func TestExtractCorrupt(t *testing.T) {
	err := Extract([]byte("definitely not a zip"), t.TempDir(), nil, testLogger())
	var archiveErr *crerrors.ArchiveError
	if !errors.As(err, &archiveErr) || archiveErr.Kind != crerrors.KindCorrupt {
		t.Fatalf("err = %v, want corrupt ArchiveError", err)
	}
}

func TestSafeEntryPath(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{name: "a/b.so", want: "a/b.so", ok: true},
		{name: "./a/./b.so", want: "a/b.so", ok: true},
		{name: `win\style.dll`, want: "win/style.dll", ok: true},
		{name: "a/../b.so", want: "b.so", ok: true},
		{name: "./", want: "", ok: true},
		{name: "..", ok: false},
		{name: "/etc/passwd", ok: false},
		{name: `D:\x.dll`, ok: false},
	}
	for _, tt := range tests {
		got, ok := safeEntryPath(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("safeEntryPath(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
