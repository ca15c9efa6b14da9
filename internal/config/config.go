package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration for the JIT dispatch runtime's demo
// binary. The runtime itself (internal/jit, internal/backend,
// internal/compiler) takes no configuration beyond its Go constructor
// arguments; this struct only configures the CLI/registration glue around
// it, the way the teacher's Config configures its gateway node binary.
type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Compiler struct {
		// CacheDir is where the Compiler Bridge writes content-addressed
		// artifact directories (internal/compiler/cache.go).
		CacheDir string `yaml:"cacheDir"`
		// ToolchainPath, when set, is the external tile-language compiler
		// executable invoked by internal/compiler/external.go. Left empty
		// in demo configs, which use internal/compiler/sim.go instead.
		ToolchainPath string `yaml:"toolchainPath"`
		// Arch is the fixed device architecture internal/compiler/sim.go
		// stamps into every fabricated artifact's metadata when no real
		// toolchain is configured.
		Arch int `yaml:"arch"`
	} `yaml:"compiler"`
	Backend struct {
		// DefaultWarps/DefaultStages are read from the config file. The
		// demo CLI commands do not consult them; they launch with 8 warps
		// and 1 stage.
		DefaultWarps  int `yaml:"defaultWarps"`
		DefaultStages int `yaml:"defaultStages"`
		// NPUDeviceID is the yaml fallback for the NPU_DEVICE_ID env var
		// (spec §6 "Environment").
		NPUDeviceID int `yaml:"npuDeviceID"`
	} `yaml:"backend"`
}

// NPUDeviceIDEnvVar is the single environment variable spec §6 names.
const NPUDeviceIDEnvVar = "NPU_DEVICE_ID"

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ResolveNPUDeviceID applies NPU_DEVICE_ID over the config file's value,
// defaulting to 0 per spec §6.
func (c *Config) ResolveNPUDeviceID() int {
	if raw, ok := os.LookupEnv(NPUDeviceIDEnvVar); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return c.Backend.NPUDeviceID
}
