// Package replay records what the agent decided each step as compressed
// JSON lines, one file per episode.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/nstehr/relic/relic-core/memory"
	"github.com/nstehr/relic/relic-core/model"
)

// Entry is one line of a replay file.
type Entry struct {
	Episode  string         `json:"episode"`
	Player   string         `json:"player"`
	Step     int            `json:"step"`
	Strategy string         `json:"strategy"`
	Actions  []model.Action `json:"actions"`
	Fired    []string       `json:"fired"`
	Relics   []memory.Relic `json:"relics,omitempty"`
	Enemies  []memory.Enemy `json:"enemies,omitempty"`
	Events   []string       `json:"events,omitempty"`
}

// Recorder appends entries to <dir>/<player>-<episode>.jsonl.zst. Every
// Write is flushed through the encoder, so a crash loses at most the
// trailing zstd frame.
type Recorder struct {
	episode string
	path    string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewRecorder creates dir if needed and opens a fresh episode file.
func NewRecorder(dir, player string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	episode := uuid.NewString()
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.jsonl.zst", player, episode))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Recorder{
		episode: episode,
		path:    path,
		f:       f,
		enc:     enc,
		w:       bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

func (r *Recorder) Episode() string { return r.episode }
func (r *Recorder) Path() string    { return r.path }

// Write stamps e with the episode id and appends it.
func (r *Recorder) Write(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return fmt.Errorf("replay %s is closed", r.episode)
	}

	e.Episode = r.episode
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := r.w.Flush(); err != nil {
		return err
	}
	return r.enc.Flush()
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.w != nil {
		err = r.w.Flush()
		r.w = nil
	}
	if r.enc != nil {
		if cerr := r.enc.Close(); err == nil {
			err = cerr
		}
		r.enc = nil
	}
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
		r.f = nil
	}
	return err
}

// ReadAll decodes every entry in a replay file.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var entries []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("%s line %d: %w", path, len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}
