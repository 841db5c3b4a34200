package objdb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the database's allocators. The zero value is usable; every
// field falls back to its default.
type Config struct {
	// GenBatchSize is how many generations a session claims from the shared
	// counter at a time.
	GenBatchSize uint64 `json:"gen_batch_size" yaml:"gen_batch_size"`
	// SlotChunkSize is how many slots each append-only slot chunk holds.
	SlotChunkSize int `json:"slot_chunk_size" yaml:"slot_chunk_size"`
	// HeapChunkSize is the byte size of each dynamic-allocation arena chunk.
	HeapChunkSize int `json:"heap_chunk_size" yaml:"heap_chunk_size"`
}

// DefaultConfig returns the tuning used when no config is supplied.
func DefaultConfig() Config {
	return Config{
		GenBatchSize:  4096,
		SlotChunkSize: 1024,
		HeapChunkSize: 64 * 1024,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.GenBatchSize == 0 {
		c.GenBatchSize = def.GenBatchSize
	}
	if c.SlotChunkSize <= 0 {
		c.SlotChunkSize = def.SlotChunkSize
	}
	if c.HeapChunkSize <= 0 {
		c.HeapChunkSize = def.HeapChunkSize
	}
	return c
}

// LoadConfig reads a yaml Config from disk, applying defaults for any field
// left unset.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg.withDefaults(), nil
}
