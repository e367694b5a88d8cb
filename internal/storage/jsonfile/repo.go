// Package jsonfile stores data-log records as flat JSON files: one file per
// record plus an append-only master_log.jsonl.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"dealfinder/internal/domain"
)

const masterLog = "master_log.jsonl"

type Repo struct {
	dir string
	mu  sync.Mutex // serialises appends to the master log
}

func New(dir string) (*Repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Repo{dir: dir}, nil
}

func (r *Repo) Insert(_ context.Context, rec domain.Record) error {
	if strings.ContainsAny(rec.ID, `/\`) || rec.ID == "" {
		return fmt.Errorf("invalid record id %q", rec.ID)
	}
	pretty, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	if err := r.writeAtomic(rec.ID+".json", pretty); err != nil {
		return fmt.Errorf("write record %s: %w", rec.ID, err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(filepath.Join(r.dir, masterLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open master log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append master log: %w", err)
	}
	return nil
}

// writeAtomic writes through a temp file and renames it into place, so
// readers see either no file or the whole record.
func (r *Repo) writeAtomic(name string, b []byte) error {
	tmp, err := os.CreateTemp(r.dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(r.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// List reads every record file, newest first, optionally filtered by type.
func (r *Repo) List(_ context.Context, typ string, limit int) ([]domain.Record, error) {
	ents, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var out []domain.Record
	for _, e := range ents {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		// a damaged file is skipped rather than hiding every other record
		b, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping unreadable record")
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping undecodable record")
			continue
		}
		if typ != "" && rec.Type != typ {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
