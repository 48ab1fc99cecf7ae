package mf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
)

// FileAccessFunc returns up to length bytes starting at offset.
// It returns a shorter slice when the data ends before offset+length.
type FileAccessFunc = func(ctx context.Context, offset, length uint64) ([]byte, error)

// BytesSource serves reads from data held in memory.
func BytesSource(data []byte) FileAccessFunc {
	return func(_ context.Context, offset, length uint64) ([]byte, error) {
		if offset >= uint64(len(data)) {
			return nil, nil
		}
		end := min(offset+length, uint64(len(data)))
		return data[offset:end], nil
	}
}

// FileSource serves reads from an open file.
// Buffers grow with the data actually read, so lengths taken from a
// damaged header never allocate more than the file holds.
func FileSource(file io.ReaderAt) FileAccessFunc {
	return func(ctx context.Context, offset, length uint64) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if offset > math.MaxInt64 {
			return nil, nil
		}
		section := io.NewSectionReader(file, int64(offset), int64(min(length, math.MaxInt64)))
		return io.ReadAll(section)
	}
}

// HTTPSource serves reads with HTTP range requests against url.
// Servers ignoring the Range header are tolerated: the requested range
// is cut out of the full response body.
func HTTPSource(client *http.Client, url string) FileAccessFunc {
	return func(ctx context.Context, offset, length uint64) ([]byte, error) {
		if length == 0 {
			return nil, nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusPartialContent:
			return io.ReadAll(io.LimitReader(resp.Body, int64(length)))
		case http.StatusOK:
			if _, err := io.CopyN(io.Discard, resp.Body, int64(offset)); err != nil {
				if errors.Is(err, io.EOF) {
					return nil, nil
				}
				return nil, err
			}
			return io.ReadAll(io.LimitReader(resp.Body, int64(length)))
		case http.StatusRequestedRangeNotSatisfiable:
			return nil, nil
		default:
			return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
		}
	}
}

func openFile(filePath string) (FileAccessFunc, func() error, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	return FileSource(file), file.Close, nil
}
