// Copyright 2022 The Project Oak Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command llb-dump builds the graph described by a TOML manifest and
// writes its serialized Definition to a file or to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pillarhq/llb/internal/manifest"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outPath string
	var manifestMode bool

	cmd := &cobra.Command{
		Use:          "llb-dump <manifest.toml>",
		Short:        "Build an LLB graph from a manifest and serialize it",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			term, err := m.Build()
			if err != nil {
				return fmt.Errorf("couldn't build graph: %v", err)
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("couldn't create %q: %v", outPath, err)
				}
				defer f.Close()
				out = f
			}

			if manifestMode {
				b, err := term.ToManifest()
				if err != nil {
					return fmt.Errorf("couldn't render manifest: %v", err)
				}
				_, err = out.Write(b)
				return err
			}

			_, err = term.WriteTo(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the definition here instead of stdout")
	cmd.Flags().BoolVar(&manifestMode, "manifest", false, "print a human-readable JSON manifest instead of the wire definition")
	return cmd
}
