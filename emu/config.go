package emu

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/rvcore/insts"
)

// HartConfig holds the feature toggles and addresses a frontend needs to
// build a Hart's Option list from a JSON file, mirroring the teacher's
// timing/latency.TimingConfig/LoadConfig pattern.
type HartConfig struct {
	// XLen is the register width, 32 or 64. Default: 64.
	XLen int `json:"xlen"`

	// Extensions lists the standard extension letters to enable beyond the
	// mandatory base integer ISA, e.g. ["M","A","F","D","C"].
	Extensions []string `json:"extensions"`

	// LoadQueueCapacity/StoreQueueCapacity size the speculative load/store
	// queues used for async bus-error rollback/replay. 0 disables the
	// queue entirely. Default: 16 for both.
	LoadQueueCapacity  int `json:"load_queue_capacity"`
	StoreQueueCapacity int `json:"store_queue_capacity"`

	// ToHostAddr/ConsoleIOAddr are typically supplied by the loader from
	// the ELF symbol table, but a config file can override or supply them
	// for a hex image that carries no symbols.
	ToHostAddr    *uint64 `json:"tohost_addr,omitempty"`
	ConsoleIOAddr *uint64 `json:"console_io_addr,omitempty"`
}

// DefaultHartConfig returns the configuration NewHart uses when no options
// override it: RV64IMAFDC with both speculation queues enabled at depth 16.
func DefaultHartConfig() *HartConfig {
	return &HartConfig{
		XLen:               64,
		Extensions:         []string{"M", "A", "F", "D", "C"},
		LoadQueueCapacity:  16,
		StoreQueueCapacity: 16,
	}
}

// LoadHartConfig loads a HartConfig from a JSON file, layered on top of
// DefaultHartConfig so a file needs only mention the fields it overrides.
func LoadHartConfig(path string) (*HartConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hart config file: %w", err)
	}

	cfg := DefaultHartConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hart config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a buildable hart.
func (c *HartConfig) Validate() error {
	if c.XLen != 32 && c.XLen != 64 {
		return fmt.Errorf("xlen must be 32 or 64, got %d", c.XLen)
	}
	for _, e := range c.Extensions {
		if _, ok := extensionLetters[e]; !ok {
			return fmt.Errorf("unknown extension %q", e)
		}
	}
	if c.LoadQueueCapacity < 0 || c.StoreQueueCapacity < 0 {
		return fmt.Errorf("queue capacities must be >= 0")
	}
	return nil
}

var extensionLetters = map[string]insts.Extension{
	"M": insts.ExtM,
	"A": insts.ExtA,
	"F": insts.ExtF,
	"D": insts.ExtD,
	"C": insts.ExtC,
	"S": insts.ExtS,
	"U": insts.ExtU,
	"B": insts.ExtB,
}

// ExtensionSet converts the config's extension letters into an
// insts.ExtensionSet.
func (c *HartConfig) ExtensionSet() insts.ExtensionSet {
	var set insts.ExtensionSet
	for _, e := range c.Extensions {
		if ext, ok := extensionLetters[e]; ok {
			set |= insts.ExtensionSet(ext)
		}
	}
	return set
}

// Options converts the config into a Hart Option list, to be combined with
// whatever memory/IO/loader-derived options the frontend adds.
func (c *HartConfig) Options() []Option {
	opts := []Option{
		WithXLen(c.XLen),
		WithExtensions(c.ExtensionSet()),
		WithLoadStoreQueues(c.LoadQueueCapacity, c.StoreQueueCapacity),
	}
	if c.ToHostAddr != nil {
		opts = append(opts, WithToHostAddr(*c.ToHostAddr))
	}
	if c.ConsoleIOAddr != nil {
		opts = append(opts, WithConsoleIOAddr(*c.ConsoleIOAddr))
	}
	return opts
}
