package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CacheKey computes the content-addressed directory name for one compiled
// specialization. Spec §4.5 requires the tuple (path, name, dyn_signature,
// warps, stages, arch) to always resolve to the same artifact directory;
// hashing the tuple keeps the on-disk layout flat regardless of how deep
// path is, the same trick the teacher uses keccak256 for identity
// fingerprints rather than path concatenation.
func CacheKey(path, name, dynSignature string, warps, stages, arch int) string {
	preimage := fmt.Sprintf("%s::%s::%s::%d::%d::%d", path, name, dynSignature, warps, stages, arch)
	hash := crypto.Keccak256([]byte(preimage))
	return common.Bytes2Hex(hash)
}

// CacheDir joins a cache root with the computed key, producing the
// directory the Bridge's Compile implementation should write into (or
// reuse, on a repeated call with the same tuple).
func CacheDir(root, path, name, dynSignature string, warps, stages, arch int) string {
	return filepath.Join(root, CacheKey(path, name, dynSignature, warps, stages, arch))
}
