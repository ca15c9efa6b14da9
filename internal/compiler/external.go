package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// External is a Bridge backed by an external tile-language toolchain
// invoked as a subprocess. The Go runtime has no in-process way to run
// that compiler, so this is the one package in the module where os/exec
// substitutes for a library dependency (see DESIGN.md).
type External struct {
	logger        *zap.Logger
	toolchainPath string
	timeout       time.Duration
}

// NewExternal constructs a Bridge that shells out to toolchainPath.
func NewExternal(logger *zap.Logger, toolchainPath string) *External {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &External{
		logger:        logger,
		toolchainPath: toolchainPath,
		timeout:       2 * time.Minute,
	}
}

type sigResponse struct {
	Classes []string `json:"classes"`
}

// ExtractStaticSignature runs "<toolchain> sig <path> <name>" and parses a
// JSON object from stdout whose "classes" field is the array of class tags.
func (e *External) ExtractStaticSignature(path, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.toolchainPath, "sig", path, name)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: extract_static_signature(%s, %s): %s: %v",
			ErrCompile, path, name, stderr.String(), err)
	}

	var resp sigResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed signature response for %s::%s: %v",
			ErrCompile, path, name, err)
	}

	e.logger.Debug("compiler: extracted static signature",
		zap.String("path", path), zap.String("name", name), zap.Int("numArgs", len(resp.Classes)))

	return resp.Classes, nil
}

// Compile runs "<toolchain> compile <path> <name> <dynSig> <warps> <stages>
// <device>" and takes the trimmed stdout as the artifact directory.
func (e *External) Compile(path, name, dynSignature string, warps, stages, deviceIndex int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.toolchainPath, "compile",
		path, name, dynSignature,
		strconv.Itoa(warps), strconv.Itoa(stages), strconv.Itoa(deviceIndex))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: compile(%s, %s, %s): %s: %v",
			ErrCompile, path, name, dynSignature, stderr.String(), err)
	}

	dir := strings.TrimSpace(stdout.String())
	if dir == "" {
		return "", fmt.Errorf("%w: compile(%s, %s, %s) produced no artifact directory",
			ErrCompile, path, name, dynSignature)
	}

	e.logger.Info("compiler: compiled specialization",
		zap.String("path", path), zap.String("name", name),
		zap.String("dynSignature", dynSignature), zap.String("dir", dir))

	return dir, nil
}
