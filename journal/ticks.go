package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/angelini/generals/world"
)

// TickLogger writes one compressed JSON line per simulation tick.
type TickLogger struct{ w *Writer }

func NewTickLogger(dir string) *TickLogger {
	return &TickLogger{w: NewWriter(dir, "ticks")}
}

func (l *TickLogger) WriteTick(r *world.Report) error { return l.w.Write(r) }
func (l *TickLogger) Close() error                    { return l.w.Close() }

// Files lists the tick journals in dir, oldest first.
func Files(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "ticks-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadFile decodes every tick report in path, in the order written. A file
// whose last frame was never closed is read up to its last flushed block.
func ReadFile(path string, fn func(world.Report) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var r world.Report
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	return nil
}
