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

// Package manifest loads a declarative, TOML-described build graph and
// turns it into an llb graph, the way the teacher repo's common.BuildConfig
// loads a build's parameters from a TOML file (common/common.go).
package manifest

import (
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/pillarhq/llb/llb"
)

// Source describes the base image a Manifest builds from.
type Source struct {
	Ref         string `toml:"ref"`
	ResolveMode string `toml:"resolve_mode"`
	Platform    string `toml:"platform"`
}

// Step describes one command run against the graph built so far.
type Step struct {
	Name string   `toml:"name"`
	Run  string   `toml:"run"`
	Args []string `toml:"args"`
	Env  []string `toml:"env"` // "KEY=VALUE" entries, in declaration order
	Cwd  string   `toml:"cwd"`
	User string   `toml:"user"`
}

// Manifest is the declarative description of a graph: one base image,
// followed by a sequence of commands each run against the previous step's
// root filesystem.
type Manifest struct {
	Source Source `toml:"source"`
	Step   []Step `toml:"step"`
}

// Load reads and parses a Manifest from a TOML file at path.
func Load(path string) (*Manifest, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't load manifest %q: %v", path, err)
	}
	m := &Manifest{}
	if err := tree.Unmarshal(m); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal manifest %q: %v", path, err)
	}
	return m, nil
}

// Build constructs the llb graph this manifest describes and returns a
// Terminal rooted at the last step's root filesystem. A manifest with no
// steps returns a Terminal rooted at the base image itself.
func (m *Manifest) Build() (*llb.Terminal, error) {
	img, err := llb.ParseImage(m.Source.Ref)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse source image %q: %v", m.Source.Ref, err)
	}
	if m.Source.ResolveMode != "" {
		img.ResolveMode(llb.ImageResolveMode(m.Source.ResolveMode))
	}
	if m.Source.Platform != "" {
		img.Platform(m.Source.Platform)
	}

	root := img.Output()
	for i, step := range m.Step {
		if step.Run == "" {
			return nil, fmt.Errorf("step %d: missing required \"run\" command", i)
		}
		e := llb.Command(step.Run).Args(step.Args...)
		if step.Cwd != "" {
			e.Cwd(step.Cwd)
		}
		if step.User != "" {
			e.User(step.User)
		}
		if step.Name != "" {
			e.CustomName(step.Name)
		}
		env, err := parseEnv(step.Env)
		if err != nil {
			return nil, fmt.Errorf("step %d: %v", i, err)
		}
		if len(env) > 0 {
			e.EnvBatch(env...)
		}

		e.AddMount(llb.Layer(0, root, "/"))
		root = e.GetMount("/")
	}

	return llb.NewTerminal(root), nil
}

func parseEnv(entries []string) ([]llb.EnvVar, error) {
	vars := make([]llb.EnvVar, 0, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("malformed env entry %q, want KEY=VALUE", e)
		}
		vars = append(vars, llb.EnvVar{Key: k, Value: v})
	}
	return vars, nil
}
