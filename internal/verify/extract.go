package verify

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/bzip2"
	_ "crypto/sha256" // digest.Canonical
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/qiniu/x/log"
)

var (
	errEmptyArchive  = errors.New("archive has no members")
	errUnsupportedXZ = errors.New("xz compression is not supported")
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicBzip2 = []byte("BZh")
	magicXZ    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// archive summarizes a completed extraction.
type archive struct {
	Members int
	Digest  digest.Digest // of the tarball bytes as read from disk
}

// extract unpacks the tarball into dst, writing each member name to list
// as it goes.
func extract(tarball, dst string, list io.Writer) (archive, error) {
	var a archive

	f, err := os.Open(tarball)
	if err != nil {
		return a, err
	}
	defer f.Close()

	digester := digest.Canonical.Digester()
	br := bufio.NewReader(io.TeeReader(f, digester.Hash()))

	r, closeFn, err := decompress(br)
	if err != nil {
		return a, err
	}
	defer closeFn()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return a, fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader || isRootMember(hdr.Name) {
			continue
		}
		if err := extractMember(dst, hdr, tr); err != nil {
			return a, fmt.Errorf("%s: %w", hdr.Name, err)
		}
		fmt.Fprintln(list, hdr.Name)
		a.Members++
	}
	if a.Members == 0 {
		return a, errEmptyArchive
	}

	// tar stops at its end-of-archive marker. The compressed stream only
	// verifies its checksum and length once read to the end.
	if _, err := io.Copy(io.Discard, r); err != nil {
		return a, fmt.Errorf("reading archive: %w", err)
	}
	// Read what is left so the digest covers the whole file.
	if _, err := io.Copy(io.Discard, br); err != nil {
		return a, err
	}
	a.Digest = digester.Digest()
	return a, nil
}

// decompress sniffs the compression format from the leading bytes.
// Anything unrecognized is handed to tar as-is.
func decompress(br *bufio.Reader) (io.Reader, func(), error) {
	head, err := br.Peek(len(magicXZ))
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	nop := func() {}
	switch {
	case bytes.HasPrefix(head, magicGzip):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case bytes.HasPrefix(head, magicZstd):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case bytes.HasPrefix(head, magicBzip2):
		return bzip2.NewReader(br), nop, nil
	case bytes.HasPrefix(head, magicXZ):
		return nil, nil, errUnsupportedXZ
	}
	log.Debug("no compression detected, reading as plain tar")
	return br, nop, nil
}

// isRootMember reports whether name is the archive root itself, as in the
// "./" entry tar writes first when archiving ".".
func isRootMember(name string) bool {
	return filepath.Clean(filepath.FromSlash(name)) == "."
}

// extractMember writes one tar entry below dst. Member and hard link paths
// are resolved with SecureJoin so symlinks planted by earlier entries
// cannot redirect writes outside dst.
func extractMember(dst string, hdr *tar.Header, r io.Reader) error {
	name := filepath.Clean(filepath.FromSlash(hdr.Name))
	if !filepath.IsLocal(name) {
		return fmt.Errorf("unsafe path %q", hdr.Name)
	}
	target, err := securejoin.SecureJoin(dst, name)
	if err != nil {
		return err
	}

	mode := hdr.FileInfo().Mode()
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, mode.Perm()|0o700)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeFile(target, r, mode.Perm()); err != nil {
			return err
		}
		// make decides what to rebuild from timestamps.
		return os.Chtimes(target, hdr.ModTime, hdr.ModTime)
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.Symlink(hdr.Linkname, target)
	case tar.TypeLink:
		src, err := securejoin.SecureJoin(dst, filepath.FromSlash(hdr.Linkname))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.Link(src, target)
	}
	log.Warnf("skipping %s: unsupported entry type %q", hdr.Name, hdr.Typeflag)
	return nil
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
