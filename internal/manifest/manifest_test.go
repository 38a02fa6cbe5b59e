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

package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `
[source]
ref = "alpine:3.18"
platform = "linux/amd64"

[[step]]
name = "install-deps"
run = "/bin/sh"
args = ["-c", "apk add --no-cache git"]
env = ["HOME=/root"]

[[step]]
run = "/bin/sh"
args = ["-c", "echo built"]
cwd = "/workspace"
`

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("couldn't write manifest fixture: %v", err)
	}
	return path
}

func TestLoadAndBuild(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Source.Ref != "alpine:3.18" {
		t.Fatalf("Source.Ref = %q, want %q", m.Source.Ref, "alpine:3.18")
	}
	if len(m.Step) != 2 {
		t.Fatalf("len(Step) = %d, want 2", len(m.Step))
	}

	term, err := m.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	def, err := term.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// base image + two exec steps + the terminal's own empty-body node.
	if len(def.Def) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(def.Def))
	}
}

func TestBuildRejectsStepWithoutRun(t *testing.T) {
	m := &Manifest{Source: Source{Ref: "alpine"}, Step: []Step{{Args: []string{"-c", "x"}}}}
	if _, err := m.Build(); err == nil {
		t.Fatalf("expected an error for a step missing \"run\"")
	}
}

func TestParseEnvRejectsMalformedEntry(t *testing.T) {
	if _, err := parseEnv([]string{"NOVALUE"}); err == nil {
		t.Fatalf("expected an error for an env entry with no \"=\"")
	}
}
