package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Size is a number of bytes. In YAML it may be written either as a plain number or in a
// human-readable form: 16KiB, 1.5MB, 512 MiB. Note that KB is 1000 bytes, KiB is 1024.
type Size int64

func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}

	return s.parse(node.Value)
}

func (s *Size) parse(value string) error {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return fmt.Errorf("bad size %q: %w", value, err)
	}

	*s = Size(n)
	return nil
}

func (s Size) String() string {
	return humanize.IBytes(uint64(s))
}
