package mhtml

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type containerFormat int

const (
	formatUnknown containerFormat = iota
	formatZip
	formatTarGzip
	formatTarZstd
	formatTarLZ4
	formatTarBrotli
)

var (
	zipMagic      = []byte{'P', 'K', 0x03, 0x04}
	zipEmptyMagic = []byte{'P', 'K', 0x05, 0x06}
	gzipMagic     = []byte{0x1f, 0x8b}
	zstdMagic     = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic      = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Function variables for testing injection.
var (
	newZstdReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
	newGzipReader = func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }
)

// archiveExtensions lists the supported container suffixes, multi-part
// suffixes first so ".tar.gz" wins over a bare ".gz" style match.
var archiveExtensions = []string{
	".tar.gz", ".tar.zst", ".tar.lz4", ".tar.br",
	".tgz", ".tzst", ".tbr", ".zip",
}

// ArchiveExt returns the archive suffix of name, or "" when name does not
// carry a supported container extension. Matching is case-insensitive.
func ArchiveExt(name string) string {
	ln := lowerASCII(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(ln, ext) {
			return ext
		}
	}
	return ""
}

func hasArchiveSignature(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic) ||
		bytes.HasPrefix(data, zipEmptyMagic) ||
		bytes.HasPrefix(data, gzipMagic) ||
		bytes.HasPrefix(data, zstdMagic) ||
		bytes.HasPrefix(data, lz4Magic)
}

// detectFormat sniffs the container format from leading bytes, falling back
// to the name hint. Brotli streams carry no magic bytes, so they are only
// recognized by extension, or attempted as a last resort for a nameless
// top-level input.
func detectFormat(data []byte, name string) containerFormat {
	switch {
	case bytes.HasPrefix(data, zipMagic), bytes.HasPrefix(data, zipEmptyMagic):
		return formatZip
	case bytes.HasPrefix(data, gzipMagic):
		return formatTarGzip
	case bytes.HasPrefix(data, zstdMagic):
		return formatTarZstd
	case bytes.HasPrefix(data, lz4Magic):
		return formatTarLZ4
	}
	switch ArchiveExt(name) {
	case ".tar.br", ".tbr":
		return formatTarBrotli
	}
	if name == "" {
		return formatTarBrotli
	}
	return formatUnknown
}

// openContainer parses one archive level into an Archive. name is the entry
// name the bytes came from ("" for the outermost input) and is only used as
// a format hint and for diagnostics.
func openContainer(data []byte, name string, limits Limits) (*Archive, error) {
	if uint64(len(data)) > limits.MaxArchiveSize {
		return nil, fmt.Errorf("%w: archive is %d bytes", ErrLimitExceeded, len(data))
	}
	switch detectFormat(data, name) {
	case formatZip:
		return readZip(data, limits)
	case formatTarGzip:
		zr, err := newGzipReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrArchiveRead, err)
		}
		return readTar(zr, limits)
	case formatTarZstd:
		zr, err := newZstdReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrArchiveRead, err)
		}
		defer zr.Close()
		return readTar(zr, limits)
	case formatTarLZ4:
		return readTar(lz4.NewReader(bytes.NewReader(data)), limits)
	case formatTarBrotli:
		return readTar(brotli.NewReader(bytes.NewReader(data)), limits)
	default:
		return nil, fmt.Errorf("%w: unrecognized container format in %q", ErrArchiveRead, name)
	}
}

func readZip(data []byte, limits Limits) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: zip: %v", ErrArchiveRead, err)
	}
	a := newArchive()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if len(a.names) >= limits.MaxEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrLimitExceeded, limits.MaxEntries)
		}
		if f.UncompressedSize64 > limits.MaxEntrySize {
			return nil, fmt.Errorf("%w: entry %q is %d bytes", ErrLimitExceeded, f.Name, f.UncompressedSize64)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: zip entry %q: %v", ErrArchiveRead, f.Name, err)
		}
		b, err := readEntry(rc, limits.MaxEntrySize)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
		a.addEntry(f.Name, b)
	}
	return a, nil
}

func readTar(r io.Reader, limits Limits) (*Archive, error) {
	a := newArchive()
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return a, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: tar: %v", ErrArchiveRead, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if len(a.names) >= limits.MaxEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrLimitExceeded, limits.MaxEntries)
		}
		if hdr.Size < 0 || uint64(hdr.Size) > limits.MaxEntrySize {
			return nil, fmt.Errorf("%w: entry %q is %d bytes", ErrLimitExceeded, hdr.Name, hdr.Size)
		}
		b, err := readEntry(tr, limits.MaxEntrySize)
		if err != nil {
			return nil, fmt.Errorf("tar entry %q: %w", hdr.Name, err)
		}
		a.addEntry(hdr.Name, b)
	}
}

// readEntry reads an entry body, refusing to expand past maxSize. The cap
// guards against streams whose declared sizes lie (decompression bombs).
func readEntry(r io.Reader, maxSize uint64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveRead, err)
	}
	if uint64(len(b)) > maxSize {
		return nil, fmt.Errorf("%w: entry exceeds %d bytes", ErrLimitExceeded, maxSize)
	}
	return b, nil
}
