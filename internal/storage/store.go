package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/flipsim/internal/config"
	"github.com/san-kum/flipsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	configFile   = "config.yaml"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Resolution int                `json:"resolution"`
	Particles  int                `json:"particles"`
	Radius     float64            `json:"radius"`
	Dt         float64            `json:"dt"`
	Frames     int                `json:"frames"`
	StepsTaken int                `json:"steps_taken"`
	FlipRatio  float64            `json:"flip_ratio"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// NewRunMetadata fills the run description from its configuration and
// outcome. ID and Timestamp are assigned by Save.
func NewRunMetadata(preset string, cfg *config.Config, sys dynamo.Fluid, result *dynamo.Result) RunMetadata {
	meta := RunMetadata{
		Preset:     preset,
		Resolution: cfg.Scene.Resolution,
		Particles:  sys.NumParticles(),
		Radius:     float64(sys.ParticleRadius()),
		Dt:         cfg.Dt,
		Frames:     cfg.Frames,
		FlipRatio:  cfg.Solver.FlipRatio,
		Metrics:    map[string]float64{},
	}
	if result != nil {
		meta.StepsTaken = result.StepsTaken
		meta.Metrics = result.Metrics
		for _, err := range result.Errors {
			meta.Errors = append(meta.Errors, err.Error())
		}
	}
	return meta
}

// Save writes the run's metadata, configuration and frame statistics and
// returns the new run ID.
func (s *Store) Save(meta RunMetadata, cfg *config.Config, frames []dynamo.FrameStats) (string, error) {
	prefix := meta.Preset
	if prefix == "" {
		prefix = "run"
	}
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", prefix, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	if cfg != nil {
		if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
			return "", fmt.Errorf("writing config: %w", err)
		}
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if len(frames) > 0 {
		if err := gocsv.MarshalFile(&frames, csvFile); err != nil {
			return "", fmt.Errorf("writing frames: %w", err)
		}
	}

	slog.Debug("run saved", "id", meta.ID, "frames", len(frames), "dir", runDir)
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			slog.Warn("skipping run", "dir", entry.Name(), "err", err)
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConfig returns the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadFrames(runID string) ([]dynamo.FrameStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []dynamo.FrameStats{}, nil
	}

	frames := []dynamo.FrameStats{}
	if err := gocsv.UnmarshalFile(file, &frames); err != nil {
		return nil, fmt.Errorf("reading frames: %w", err)
	}
	return frames, nil
}
