package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// MaxEntries bounds how many recent analyses are kept per owner.
const MaxEntries = 10

// Store keeps the last analyses per owner on disk, newest first. It is a
// best-effort convenience: every failure is logged and swallowed, an
// unavailable store never fails an analysis.
type Store struct {
	dir string
	mu  sync.Mutex
	log *log.Helper
}

func NewStore(dir string, logger log.Logger) *Store {
	return &Store{dir: dir, log: log.NewHelper(logger)}
}

// Append records one completed analysis for the owner, stamping it with the
// completion time in epoch milliseconds and truncating to MaxEntries.
func (s *Store) Append(owner string, analysis map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(owner)

	stamped := make(map[string]any, len(analysis)+1)
	for k, v := range analysis {
		stamped[k] = v
	}
	stamped["timestamp"] = time.Now().UnixMilli()

	entries = append([]map[string]any{stamped}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		s.log.Warnf("history: marshal entries for %s: %v", owner, err)
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Warnf("history: create dir: %v", err)
		return
	}
	if err := os.WriteFile(s.path(owner), data, 0o644); err != nil {
		s.log.Warnf("history: write %s: %v", owner, err)
	}
}

// List returns the owner's stored analyses, newest first. A missing or
// unreadable file is an empty history, not an error.
func (s *Store) List(owner string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(owner)
}

func (s *Store) load(owner string) []map[string]any {
	data, err := os.ReadFile(s.path(owner))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnf("history: read %s: %v", owner, err)
		}
		return nil
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warnf("history: corrupt history for %s, resetting: %v", owner, err)
		return nil
	}
	return entries
}

// path maps an owner to a file inside the store directory. Owners are
// user-chosen names, so anything that could escape the directory is
// replaced before joining.
func (s *Store) path(owner string) string {
	return filepath.Join(s.dir, ownerFile(owner))
}

func ownerFile(owner string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, owner)
	if strings.Trim(safe, "._-") == "" {
		safe = "_" + safe
	}
	return safe + ".json"
}
