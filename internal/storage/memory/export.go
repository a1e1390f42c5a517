// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tormentor-esp/extension/pkg/core"
)

// MatchExport is the root of the exported JSON document.
type MatchExport struct {
	Match      core.Match       `json:"match"`
	Spawners   []SpawnerRecord  `json:"spawners"`
	BossEvents []core.BossEvent `json:"bossEvents"`
	Summary    Summary          `json:"summary"`
}

// Summary holds per-match totals.
type Summary struct {
	Spawners      int `json:"spawners"`
	Kills         int `json:"kills"`
	Notifications int `json:"notifications"`
}

func (b *Backend) buildExport() MatchExport {
	export := MatchExport{
		Match:      *b.match,
		Spawners:   make([]SpawnerRecord, 0, len(b.spawners)),
		BossEvents: append([]core.BossEvent{}, b.bossEvents...),
	}
	for _, r := range b.spawners {
		export.Spawners = append(export.Spawners, *r)
		export.Summary.Notifications += len(r.Notifications)
		for _, e := range r.Bosses {
			if e.Kind == core.BossKilled {
				export.Summary.Kills++
			}
		}
	}
	export.Summary.Spawners = len(export.Spawners)
	return export
}

// exportFileName is tormentor_<start>_<session>.json[.gz].
func (b *Backend) exportFileName() string {
	name := fmt.Sprintf("tormentor_%s_%s.json",
		b.match.StartTime.Format("20060102_150405"), b.match.SessionID)
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return name
}

func (b *Backend) exportJSON() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFileName())

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		if err := json.NewEncoder(gz).Encode(b.buildExport()); err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	} else if err := json.NewEncoder(f).Encode(b.buildExport()); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	b.lastExportPath = outputPath
	return nil
}
