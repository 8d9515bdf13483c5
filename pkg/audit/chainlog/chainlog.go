// Package chainlog implements the append-only, rotation-aware, hash-chained
// durable log that is the system-of-record for tamper evidence. Every
// append links to its predecessor by hash; nothing is ever rewritten or
// deleted.
package chainlog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"auditlog/internal/apperr"
	"auditlog/pkg/audit"
)

// Config controls file layout and durability of a chain log directory.
type Config struct {
	Dir         string
	FilePrefix  string
	MaxFileSize int64
	SyncOnWrite bool
}

func (c Config) withDefaults() Config {
	if c.FilePrefix == "" {
		c.FilePrefix = "audit"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 64 << 20 // 64 MiB
	}
	return c
}

// Writer is the single writer for a chain log directory. All appends go
// through its mutex; readers (Scan, integrity verification, archival) open
// independent file handles and never block the writer.
type Writer struct {
	cfg Config

	mu       sync.Mutex
	file     *os.File
	fileSize int64
	nextSeq  uint64
	lastHash [32]byte

	// OnAppend, if set, is invoked after each successful append with the
	// entry just written. The Integrity Monitor's bounded verification
	// window subscribes through this hook rather than re-scanning the
	// chain log from disk.
	OnAppend func(Entry)
}

// Open opens (or creates) a chain log directory, scanning existing files to
// recover the next sequence number and last link hash, per the recovery
// contract: the last valid line of the highest-sequence file seeds state;
// an unparseable trailing line is treated as an incomplete final write and
// ignored.
func Open(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, "create chain log directory", err)
	}

	files, err := listLogFiles(cfg.Dir, cfg.FilePrefix)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, "list chain log files", err)
	}

	w := &Writer{cfg: cfg}

	if len(files) == 0 {
		f, err := createLogFile(cfg.Dir, cfg.FilePrefix)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeIO, "create initial chain log file", err)
		}
		w.file = f
		return w, nil
	}

	last := files[len(files)-1]
	seq, hash, size, err := recoverFromFile(last)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, "recover chain log state", err)
	}
	w.nextSeq = seq
	w.lastHash = hash

	f, err := os.OpenFile(last, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, "reopen chain log file", err)
	}
	w.file = f
	w.fileSize = size
	return w, nil
}

// listLogFiles returns the chain log's data files in name order, which is
// also chain order because file names carry a monotonic timestamp suffix.
func listLogFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".log" && len(e.Name()) > len(prefix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func createLogFile(dir, prefix string) (*os.File, error) {
	name := fmt.Sprintf("%s-%020d.log", prefix, time.Now().UnixNano())
	return os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
}

// recoverFromFile scans a log file's lines, ignoring an unparseable trailing
// line, and returns the next sequence to assign, the last valid entry's
// link hash, and the file's size as of the last valid line.
func recoverFromFile(path string) (nextSeq uint64, lastHash [32]byte, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, lastHash, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	var lastValid Entry
	var found bool
	var offset int64
	for scanner.Scan() {
		line := scanner.Bytes()
		lineLen := int64(len(line)) + 1
		entry, derr := decodeLine(line)
		if derr != nil {
			// Trailing unparseable line: treated as an incomplete final
			// write, not corruption, and simply not counted toward size.
			break
		}
		lastValid = entry
		found = true
		offset += lineLen
	}
	if !found {
		return 0, lastHash, 0, nil
	}
	h, err := hashFromHex(lastValid.Checksum)
	if err != nil {
		return 0, lastHash, 0, err
	}
	return lastValid.Sequence + 1, h, offset, nil
}

// Append assigns the event the next sequence number, links it to the
// chain's last hash, and durably appends it as a single line. It rotates
// the current file first if the append would exceed MaxFileSize; rotation
// never resets the sequence counter or the hash chain.
func (w *Writer) Append(ctx context.Context, event audit.Event) (Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Entry{}, apperr.Wrap(apperr.CodeIO, "marshal canonical event payload", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seq := w.nextSeq
	prev := w.lastHash
	ph := payloadHash(payload)
	lh := linkHash(seq, ph, prev)

	prevChecksum := ""
	if seq != 0 {
		prevChecksum = fmtHash(prev)
	}

	entry := Entry{
		Sequence:     seq,
		EventID:      event.ID.String(),
		Timestamp:    event.Timestamp,
		EventData:    json.RawMessage(payload),
		Checksum:     fmtHash(lh),
		PrevChecksum: prevChecksum,
	}

	line, err := encodeLine(entry)
	if err != nil {
		return Entry{}, err
	}

	if w.fileSize+int64(len(line)) > w.cfg.MaxFileSize && w.fileSize > 0 {
		if err := w.rotate(); err != nil {
			return Entry{}, err
		}
	}

	n, err := w.file.Write(line)
	if err != nil {
		return Entry{}, apperr.Wrap(apperr.CodeIO, "append chain log entry", err)
	}
	if w.cfg.SyncOnWrite {
		if err := w.file.Sync(); err != nil {
			return Entry{}, apperr.Wrap(apperr.CodeIO, "sync chain log entry", err)
		}
	}

	w.fileSize += int64(n)
	w.nextSeq = seq + 1
	w.lastHash = lh

	if w.OnAppend != nil {
		w.OnAppend(entry)
	}
	return entry, nil
}

// rotate flushes and swaps the underlying file for a new one, continuing
// the chain. Caller must hold w.mu.
func (w *Writer) rotate() error {
	if err := w.file.Sync(); err != nil {
		return apperr.Wrap(apperr.CodeIO, "flush chain log before rotation", err)
	}
	if err := w.file.Close(); err != nil {
		return apperr.Wrap(apperr.CodeIO, "close chain log before rotation", err)
	}
	f, err := createLogFile(w.cfg.Dir, w.cfg.FilePrefix)
	if err != nil {
		return apperr.Wrap(apperr.CodeIO, "create rotated chain log file", err)
	}
	w.file = f
	w.fileSize = 0
	return nil
}

// Close flushes and closes the current file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Sync(); err != nil {
		return apperr.Wrap(apperr.CodeIO, "flush chain log on close", err)
	}
	return w.file.Close()
}

// Len reports the next sequence to be assigned, i.e. the chain's current
// length in entries.
func (w *Writer) Len() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextSeq
}

// Scan walks every entry across every file in chain order, invoking fn for
// each. It opens independent file handles and never blocks Append. An
// unparseable line that is not the final line of the final file is
// corruption and is reported to fn via err with ok=false rather than
// aborting the scan, so the Integrity Monitor can collect every break in a
// single pass.
func (w *Writer) Scan(ctx context.Context, fn func(entry Entry, ok bool, parseErr error) error) error {
	files, err := listLogFiles(w.cfg.Dir, w.cfg.FilePrefix)
	if err != nil {
		return apperr.Wrap(apperr.CodeIO, "list chain log files for scan", err)
	}
	for fi, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		last := fi == len(files)-1
		if err := scanFile(ctx, path, last, fn); err != nil {
			return err
		}
	}
	return nil
}

func scanFile(ctx context.Context, path string, isLastFile bool, fn func(Entry, bool, error) error) error {
	f, err := os.Open(path)
	if err != nil {
		return apperr.Wrap(apperr.CodeIO, "open chain log file for scan", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	var lines [][]byte
	for scanner.Scan() {
		lines = append(lines, append([]byte(nil), scanner.Bytes()...))
	}

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, derr := decodeLine(line)
		if derr != nil {
			isTrailing := isLastFile && i == len(lines)-1
			if isTrailing {
				continue
			}
			if err := fn(Entry{}, false, derr); err != nil {
				return err
			}
			continue
		}
		if err := fn(entry, true, nil); err != nil {
			return err
		}
	}
	return nil
}

func fmtHash(h [32]byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(h)*2)
	for i, b := range h {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
