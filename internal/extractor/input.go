package extractor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/iotux/log-parser/internal/errors"
)

// Source is a readable log source. Close releases the underlying file
// and, for compressed sources, the decompressor.
type Source struct {
	io.Reader
	closers []io.Closer
}

// Close closes the decompressor (if any) and then the file.
func (s *Source) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenFile opens a log file for extraction. Files ending in ".gz" are
// transparently decompressed. Missing and empty files are reported as
// input errors.
func OpenFile(path string) (*Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", path),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", path),
			err,
		)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", path),
			err,
		)
	}
	if stat.Size() == 0 {
		file.Close()
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", path),
			errors.ErrFileEmpty,
		)
	}

	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, errors.NewInputError(
				fmt.Sprintf("failed to read gzip header of '%s'", path),
				err,
			)
		}
		return &Source{Reader: zr, closers: []io.Closer{zr, file}}, nil
	}
	return &Source{Reader: file, closers: []io.Closer{file}}, nil
}
