package kb

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/storage"
)

// CounterFile is the counter's path relative to the knowledge base root.
const CounterFile = "kb_counter.txt"

// Counter is the persistent sequence used to number committed documents.
// It is not safe for concurrent use; Base serializes access.
type Counter struct {
	fs storage.Provider
}

// NewCounter returns a Counter stored in fs.
func NewCounter(fs storage.Provider) *Counter {
	return &Counter{fs: fs}
}

// Current returns the last issued value, 0 when nothing was issued yet.
func (c *Counter) Current() (int, error) {
	data, err := c.fs.Read(CounterFile)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("kb: read counter: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("kb: counter value %q: %w", data, apperr.ErrCounterCorrupt)
	}
	return n, nil
}

// Next persists and returns the next value. A corrupt counter is never reset.
func (c *Counter) Next() (int, error) {
	n, err := c.Current()
	if err != nil {
		return 0, err
	}
	n++
	if err := c.fs.Write(CounterFile, []byte(strconv.Itoa(n))); err != nil {
		return 0, fmt.Errorf("kb: write counter: %w", err)
	}
	return n, nil
}
