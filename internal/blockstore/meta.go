package blockstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goodnatureofminers/chainverify7000-backend/pkg/safe"
)

const (
	metaFileName     = "chunks.meta"
	chunkFilePattern = "chunk_%d.bin.zst"

	compressionZstd = "zstd"
)

// Meta describes the chunked store layout, loaded once from chunks.meta when
// the store is opened.
type Meta struct {
	TotalBlocks    uint64
	NumChunks      uint32
	BlocksPerChunk uint32
	Compression    string
}

// LoadMeta parses the key=value metadata file in dir. Unknown keys are
// ignored so newer archivers can extend the format.
func LoadMeta(dir string) (Meta, error) {
	path := filepath.Join(dir, metaFileName)
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, fmt.Errorf("open store metadata %s: %w", path, err)
	}
	defer f.Close()

	var (
		meta Meta
		seen = map[string]bool{}
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Meta{}, fmt.Errorf("parse store metadata: malformed line %q", line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		seen[key] = true

		switch key {
		case "total_blocks":
			meta.TotalBlocks, err = strconv.ParseUint(value, 10, 64)
		case "num_chunks":
			var v uint64
			if v, err = strconv.ParseUint(value, 10, 64); err == nil {
				meta.NumChunks, err = safe.Uint32(v)
			}
		case "blocks_per_chunk":
			var v uint64
			if v, err = strconv.ParseUint(value, 10, 64); err == nil {
				meta.BlocksPerChunk, err = safe.Uint32(v)
			}
		case "compression":
			meta.Compression = value
		}
		if err != nil {
			return Meta{}, fmt.Errorf("parse store metadata key %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Meta{}, fmt.Errorf("read store metadata %s: %w", path, err)
	}

	for _, key := range []string{"total_blocks", "num_chunks", "blocks_per_chunk", "compression"} {
		if !seen[key] {
			return Meta{}, fmt.Errorf("store metadata %s missing key %s", path, key)
		}
	}
	if meta.Compression != compressionZstd {
		return Meta{}, fmt.Errorf("store compression %q not supported", meta.Compression)
	}
	return meta, nil
}

func chunkPath(dir string, chunk uint32) string {
	return filepath.Join(dir, fmt.Sprintf(chunkFilePattern, chunk))
}
