package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// runConfig mirrors the command-line flags as a YAML document, so a run can
// be described in a file and repeated. Explicitly set flags win over file
// values.
type runConfig struct {
	Rooted      *bool   `yaml:"rooted"`
	SubtreeOnly *bool   `yaml:"subtree-only"`
	Silent      *bool   `yaml:"silent"`
	Precision   *int    `yaml:"precision"`
	Workers     *int    `yaml:"workers"`
	Strategy    *string `yaml:"strategy"`
	Gzip        *bool   `yaml:"gzip"`
	Out         *string `yaml:"out"`
}

// applyRunConfig loads opts.configFile and fills in every option the user
// did not set on the command line.
func applyRunConfig(cmd *cobra.Command, opts *options) error {
	data, err := os.ReadFile(opts.configFile)
	if err != nil {
		return err
	}

	var rc runConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil {
		return fmt.Errorf("config %s: %w", opts.configFile, err)
	}

	flags := cmd.Flags()
	setBool := func(name string, dst *bool, src *bool) {
		if src != nil && !flags.Changed(name) {
			*dst = *src
		}
	}
	setBool("rooted", &opts.rooted, rc.Rooted)
	setBool("subtree-only", &opts.subtreeOnly, rc.SubtreeOnly)
	setBool("silent", &opts.silent, rc.Silent)
	setBool("gzip", &opts.gzipOut, rc.Gzip)
	if rc.Precision != nil && !flags.Changed("precision") {
		opts.precision = *rc.Precision
	}
	if rc.Workers != nil && !flags.Changed("workers") {
		opts.workers = *rc.Workers
	}
	if rc.Strategy != nil && !flags.Changed("strategy") {
		opts.strategy = *rc.Strategy
	}
	if rc.Out != nil && !flags.Changed("out") {
		opts.out = *rc.Out
	}
	return nil
}
