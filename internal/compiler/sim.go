package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sim is a Bridge that never shells out to a toolchain. It fabricates a
// minimal on-disk artifact matching the layout spec §6 fixes, so tests and
// demos can exercise the whole dispatch path against the sim backend
// without a compiler install.
type Sim struct {
	cacheRoot string
	arch      int

	mu         sync.Mutex
	signatures map[string][]string
	compiles   map[string]string
}

// NewSim constructs a Sim bridge writing artifacts under cacheRoot, using
// arch as the fixed device architecture every fabricated artifact claims
// to target.
func NewSim(cacheRoot string, arch int) *Sim {
	return &Sim{
		cacheRoot:  cacheRoot,
		arch:       arch,
		signatures: make(map[string][]string),
		compiles:   make(map[string]string),
	}
}

// Register pre-declares the static signature class tags for (path, name),
// standing in for what a real toolchain would derive from the source
// file. Tests call this before dispatching through a sim bridge.
func (s *Sim) Register(path, name string, classTags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signatures[path+"::"+name] = classTags
}

// ExtractStaticSignature returns the class tags previously passed to
// Register.
func (s *Sim) ExtractStaticSignature(path, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags, ok := s.signatures[path+"::"+name]
	if !ok {
		return nil, fmt.Errorf("%w: no signature registered for %s::%s", ErrCompile, path, name)
	}
	return tags, nil
}

// Compile fabricates a directory containing a placeholder binary
// ("<name>.bin" holding a short marker string) and a metadata JSON sidecar, reusing the directory on a repeated call with
// the same tuple (spec §4.5 content-addressing requirement).
func (s *Sim) Compile(path, name, dynSignature string, warps, stages, deviceIndex int) (string, error) {
	key := CacheKey(path, name, dynSignature, warps, stages, s.arch)

	s.mu.Lock()
	if dir, ok := s.compiles[key]; ok {
		s.mu.Unlock()
		return dir, nil
	}
	s.mu.Unlock()

	dir := filepath.Join(s.cacheRoot, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating artifact directory %s: %v", ErrCompile, dir, err)
	}

	binPath := filepath.Join(dir, name+".bin")
	if err := os.WriteFile(binPath, []byte("sim-artifact\n"), 0o644); err != nil {
		return "", fmt.Errorf("%w: writing stub artifact %s: %v", ErrCompile, binPath, err)
	}

	meta := struct {
		Shared uint32 `json:"shared"`
		Target struct {
			Arch uint32 `json:"arch"`
		} `json:"target"`
		MixMode string `json:"mix_mode"`
	}{}
	meta.Shared = 0
	meta.Target.Arch = uint32(s.arch)
	meta.MixMode = "mix"

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshaling metadata for %s: %v", ErrCompile, dir, err)
	}
	metaPath := filepath.Join(dir, name+".json")
	if err := os.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing metadata %s: %v", ErrCompile, metaPath, err)
	}

	s.mu.Lock()
	s.compiles[key] = dir
	s.mu.Unlock()

	return dir, nil
}
