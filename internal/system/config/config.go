// Released under an MIT license. See LICENSE.

// Package config provides mu's runtime configuration.
package config

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

// Version is the runtime version recorded in saved images.
const Version = "0.1.0"

// GCMode selects when the collector runs.
type GCMode string

// Collection modes.
const (
	Auto   GCMode = "auto"
	Demand GCMode = "demand"
	None   GCMode = "none"
)

// T (config) holds heap geometry and collection policy.
type T struct {
	Npages   int    `yaml:"npages"`
	PageSize int    `yaml:"page_size"`
	GCMode   GCMode `yaml:"gcmode"`
	Version  string `yaml:"version"`
}

type config = T

// Default returns the default configuration.
func Default() *T {
	return &T{
		Npages:   1024,
		PageSize: pagesize(),
		GCMode:   Auto,
		Version:  Version,
	}
}

// Load reads a YAML configuration file. Missing settings keep their defaults.
func Load(path string) (*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorx.ExternalError.Wrap(err, "cannot open %s", path)
	}
	defer f.Close()

	c := Default()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil {
		return nil, errorx.IllegalFormat.Wrap(err, "cannot parse %s", path)
	}

	return c, c.validate()
}

// Parse reads a configuration string of the form "npages:1024,gcmode:auto".
func Parse(s string) (*T, error) {
	c := Default()

	if strings.TrimSpace(s) == "" {
		return c, nil
	}

	for _, phrase := range strings.Split(s, ",") {
		parts := strings.Split(phrase, ":")
		if len(parts) != 2 {
			return nil, errorx.IllegalFormat.New("malformed setting %q", phrase)
		}

		name, arg := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

		switch name {
		case "npages", "page_size":
			n, err := strconv.Atoi(arg)
			if err != nil {
				return nil, errorx.IllegalFormat.Wrap(err, "bad %s", name)
			}

			if name == "npages" {
				c.Npages = n
			} else {
				c.PageSize = n
			}
		case "gcmode":
			c.GCMode = GCMode(arg)
		default:
			return nil, errorx.IllegalFormat.New("unknown setting %q", name)
		}
	}

	return c, c.validate()
}

// Unmarshal decodes a configuration saved with Marshal.
func Unmarshal(b []byte) (*T, error) {
	c := &T{}

	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil {
		return nil, errorx.IllegalFormat.Wrap(err, "cannot decode configuration")
	}

	return c, c.validate()
}

// Marshal encodes the configuration as YAML.
func (c *config) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(c); err != nil {
		return nil, errorx.IllegalFormat.Wrap(err, "cannot encode configuration")
	}

	if err := encoder.Close(); err != nil {
		return nil, errorx.IllegalFormat.Wrap(err, "cannot encode configuration")
	}

	return buf.Bytes(), nil
}

// String returns the configuration in the form accepted by Parse.
func (c *config) String() string {
	return "npages:" + strconv.Itoa(c.Npages) +
		",page_size:" + strconv.Itoa(c.PageSize) +
		",gcmode:" + string(c.GCMode)
}

func (c *config) validate() error {
	switch c.GCMode {
	case Auto, Demand, None:
	default:
		return errorx.IllegalFormat.New("unknown gcmode %q", c.GCMode)
	}

	if c.Npages <= 0 {
		return errorx.IllegalFormat.New("npages must be positive, got %d", c.Npages)
	}

	if c.PageSize <= 0 || c.PageSize%8 != 0 {
		return errorx.IllegalFormat.New("page_size must be a positive multiple of 8, got %d", c.PageSize)
	}

	return nil
}
