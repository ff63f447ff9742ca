package verify

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var testModTime = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

// member describes one entry of a test tarball.
type member struct {
	Name string
	Body string
	Mode int64
	Type byte
	Link string
}

func tarBytes(t *testing.T, members []member) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, m := range members {
		hdr := &tar.Header{
			Name:     m.Name,
			Mode:     m.Mode,
			Typeflag: m.Type,
			Linkname: m.Link,
			ModTime:  testModTime,
		}
		if hdr.Typeflag == 0 {
			hdr.Typeflag = tar.TypeReg
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
			if hdr.Typeflag == tar.TypeDir {
				hdr.Mode = 0o755
			}
		}
		if hdr.Typeflag == tar.TypeReg {
			hdr.Size = int64(len(m.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header %s: %v", m.Name, err)
		}
		if hdr.Size > 0 {
			if _, err := tw.Write([]byte(m.Body)); err != nil {
				t.Fatalf("write %s: %v", m.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFileT(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// project is a minimal make-dist style source tree.
var project = []member{
	{Name: "hello-1.0/", Type: tar.TypeDir},
	{Name: "hello-1.0/README.txt", Body: "hello\n"},
	{Name: "hello-1.0/hello.c", Body: "int main(void) { return 0; }\n"},
	{Name: "hello-1.0/configure", Body: "#!/bin/sh\n", Mode: 0o755},
}

// goodTarball writes hello-1.0.tar.gz into a fresh directory.
func goodTarball(t *testing.T) string {
	t.Helper()
	return writeFileT(t, t.TempDir(), "hello-1.0.tar.gz", gzipBytes(t, tarBytes(t, project)))
}

// buildScript writes an executable shell script standing in for make.
func buildScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "build.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// workDirs lists the work directories left under root.
func workDirs(t *testing.T, root string) []string {
	t.Helper()
	dirs, err := filepath.Glob(filepath.Join(root, DefaultPrefix+"_*"))
	if err != nil {
		t.Fatal(err)
	}
	return dirs
}
