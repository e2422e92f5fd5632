package batchlm

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/batchlm/batchlm/trace"
)

// PlannerConfig groups the resource-planner tunables used to size chunks
// (spec §4.3). Grouped the way sim/config.go groups KVCacheConfig and
// BatchConfig for the teacher's planner-equivalent (batch formation).
type PlannerConfig struct {
	AvailableDeviceMemory int64 `yaml:"available_device_memory"` // bytes
	MaxConcurrentBlocks   int64 `yaml:"max_concurrent_blocks"`
	MaxThreads            int64 `yaml:"max_threads"` // dispatch-width ceiling, spec's max_threads
}

// EngineConfig is the top-level, YAML-loadable configuration for one
// engine instance.
type EngineConfig struct {
	Planner PlannerConfig `yaml:"planner"`
	// TraceLevel controls how much per-iteration diagnostic detail Fit
	// collects (batchlm/trace). Empty or "none" disables tracing.
	TraceLevel string `yaml:"trace_level"`
}

// DefaultPlannerConfig returns reasonable defaults for a CPU substrate:
// a generous memory ceiling, a large concurrent-block budget (this
// substrate has no real block-occupancy limit) and a threads-per-block
// ceiling used only to shape n_fits_per_block (spec §4.3).
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		AvailableDeviceMemory: 4 << 30, // 4 GiB
		MaxConcurrentBlocks:   1 << 20,
		MaxThreads:            1024,
	}
}

// DefaultEngineConfig returns an EngineConfig with DefaultPlannerConfig.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Planner: DefaultPlannerConfig()}
}

// LoadEngineConfig reads and parses a YAML engine configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected, mirroring
// sim/bundle.go's LoadPolicyBundle.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine config: %w", err)
	}
	cfg := DefaultEngineConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing engine config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the planner configuration is sane, mirroring
// sim/bundle.go's PolicyBundle.Validate: descriptive errors naming the
// offending field and value rather than a bare "invalid config".
func (c PlannerConfig) Validate() error {
	if err := validatePositiveInt64("available_device_memory", c.AvailableDeviceMemory); err != nil {
		return err
	}
	if err := validatePositiveInt64("max_concurrent_blocks", c.MaxConcurrentBlocks); err != nil {
		return err
	}
	if err := validatePositiveInt64("max_threads", c.MaxThreads); err != nil {
		return err
	}
	return nil
}

// validateTraceLevel checks EngineConfig.TraceLevel against the levels
// batchlm/trace recognizes.
func validateTraceLevel(level string) error {
	if !trace.IsValidLevel(level) {
		return fmt.Errorf("trace_level: unrecognized level %q", level)
	}
	return nil
}

func validatePositiveInt64(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return nil
}

// validateModelID returns a descriptive error if id is not registered,
// listing the known ids in sorted order (mirrors sim/bundle.go's
// validNames helper).
func validateModelID(id ModelID) error {
	if IsRegisteredModel(id) {
		return nil
	}
	return fmt.Errorf("%w: %q; registered models: %s", ErrInvalidModelID, id, registeredModelNames())
}

func validateEstimatorID(id EstimatorID) error {
	if IsRegisteredEstimator(id) {
		return nil
	}
	return fmt.Errorf("%w: %q; registered estimators: %s", ErrInvalidEstimatorID, id, registeredEstimatorNames())
}

func registeredModelNames() string {
	names := make([]string, 0, len(modelRegistry))
	for id := range modelRegistry {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func registeredEstimatorNames() string {
	names := make([]string, 0, len(estimatorRegistry))
	for id := range estimatorRegistry {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// validateRequest checks call-level preconditions (spec §6, "Error
// surface") before any device memory is planned or allocated.
func validateRequest(req FitRequest, batch FitBatch) error {
	if err := validateModelID(req.ModelID); err != nil {
		return err
	}
	if err := validateEstimatorID(req.EstimatorID); err != nil {
		return err
	}
	if req.Tolerance <= 0 || math.IsNaN(req.Tolerance) {
		return fmt.Errorf("%w: got %f", ErrInvalidTolerance, req.Tolerance)
	}
	if req.MaxIterations < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxIter, req.MaxIterations)
	}
	if req.NPoints < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidNPoints, req.NPoints)
	}
	if batch.NFits < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidNFits, batch.NFits)
	}
	return nil
}
