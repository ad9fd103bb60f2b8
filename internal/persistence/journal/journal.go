package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"retailtwin.io/internal/sim/world"
)

// Writer appends broadcast events as zstd-compressed JSONL, rotating hourly.
// It implements world.EventSink.
type Writer struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix}
}

func (j *Writer) WriteEvent(e world.SinkEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != j.curHour {
		if err := j.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return err
	}
	return nil
}

func (j *Writer) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *Writer) rotateLocked(hour string) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(j.baseDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, hour)
	f, err := os.OpenFile(filepath.Join(j.baseDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return err
	}
	j.f = f
	j.enc = enc
	j.w = bufio.NewWriter(enc)
	j.curHour = hour
	return nil
}

func (j *Writer) closeLocked() error {
	if j.f == nil {
		return nil
	}
	var firstErr error
	if err := j.w.Flush(); err != nil {
		firstErr = err
	}
	if err := j.enc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := j.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	j.f = nil
	j.enc = nil
	j.w = nil
	j.curHour = ""
	return firstErr
}
