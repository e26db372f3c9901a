package retention

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"commentary-server-go/internal/domain/eventbus"
	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/logging"
)

// Stats summarises the audio directory.
type Stats struct {
	Files int   `json:"audio_files"`
	Bytes int64 `json:"audio_bytes"`
}

type asset struct {
	path string
	age  time.Duration
}

// Manager bounds the audio directory by age first, then by count.
type Manager struct {
	dir      string
	window   time.Duration
	maxFiles int
	logger   *logging.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewManager(cfg config.AudioConfig, logger *logging.Logger) *Manager {
	return &Manager{
		dir:      cfg.Dir,
		window:   cfg.RetentionWindow(),
		maxFiles: cfg.MaxFiles,
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe reclaims synchronously after every synthesized asset.
func (m *Manager) Subscribe(bus *eventbus.Bus) error {
	return bus.Subscribe(eventbus.EventAudioSynthesized, m.onSynthesized)
}

func (m *Manager) onSynthesized(data eventbus.AudioEventData) {
	m.logger.DebugTag("RETENTION", "reclaiming after %s", filepath.Base(data.Path))
	m.Reclaim()
}

// Reclaim deletes assets older than the window, then the oldest survivors
// beyond the ceiling. Errors are logged and never returned.
func (m *Manager) Reclaim() {
	m.mu.Lock()
	defer m.mu.Unlock()

	assets, err := m.scan()
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.ErrorTag("RETENTION", "scan of %s failed: %v", m.dir, err)
		}
		return
	}

	survivors := make([]asset, 0, len(assets))
	expired := 0
	for _, a := range assets {
		if a.age > m.window {
			if m.remove(a, "expired") {
				expired++
			}
			continue
		}
		survivors = append(survivors, a)
	}

	trimmed := 0
	if excess := len(survivors) - m.maxFiles; excess > 0 {
		sort.SliceStable(survivors, func(i, j int) bool { return survivors[i].age > survivors[j].age })
		for _, a := range survivors[:excess] {
			if m.remove(a, "over ceiling") {
				trimmed++
			}
		}
	}

	if expired+trimmed > 0 {
		m.logger.InfoTag("RETENTION", "removed %d expired and %d excess audio files from %s", expired, trimmed, m.dir)
	}
}

// Stats counts the assets currently on disk. A missing directory is empty.
func (m *Manager) Stats() Stats {
	assets, err := m.scan()
	if err != nil {
		return Stats{}
	}
	var s Stats
	for _, a := range assets {
		if info, err := os.Stat(a.path); err == nil {
			s.Files++
			s.Bytes += info.Size()
		}
	}
	return s
}

// Dir returns the managed directory.
func (m *Manager) Dir() string { return m.dir }

func (m *Manager) scan() ([]asset, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	now := m.now()
	assets := make([]asset, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".mp3") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat.
			continue
		}
		assets = append(assets, asset{
			path: filepath.Join(m.dir, entry.Name()),
			age:  now.Sub(info.ModTime()),
		})
	}
	return assets, nil
}

func (m *Manager) remove(a asset, reason string) bool {
	if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
		m.logger.WarnTag("RETENTION", "could not remove %s (%s): %v", filepath.Base(a.path), reason, err)
		return false
	}
	m.logger.DebugTag("RETENTION", "removed %s (%s, age %s)", filepath.Base(a.path), reason, a.age.Round(time.Second))
	return true
}
