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

package llb

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pillarhq/llb/internal/serialize"
	"github.com/pillarhq/llb/pkg/pb"
)

// vertexAdapter lets the serializer walk this package's unexported vertex
// interface without llb importing internal/serialize's concrete types, and
// without internal/serialize importing llb (which would cycle back here).
type vertexAdapter struct{ v vertex }

func (a vertexAdapter) ID() int64 { return int64(a.v.id()) }

func (a vertexAdapter) Inputs() []serialize.Output {
	ins := a.v.inputs()
	out := make([]serialize.Output, len(ins))
	for i, o := range ins {
		out[i] = outputAdapter{o}
	}
	return out
}

func (a vertexAdapter) Marshal() (*pb.Op, *pb.OpMetadata) { return a.v.marshal() }

type outputAdapter struct{ o Output }

func (a outputAdapter) VertexValue() serialize.Vertex { return vertexAdapter{a.o.Vertex()} }
func (a outputAdapter) IndexValue() int64             { return int64(a.o.Index()) }

// Terminal is the root of a graph: a single Output whose Marshal walks
// every operation it transitively depends on (spec §4.4).
type Terminal struct {
	out Output
}

// NewTerminal constructs a Terminal rooted at out.
func NewTerminal(out Output) *Terminal {
	return &Terminal{out: out}
}

// Marshal recursively serializes the graph rooted at the terminal's output
// and returns the resulting Definition envelope. Per spec §4.4 steps 3 and
// 5, the terminal itself is appended as one last node: it carries a single
// input (the chosen output) and an empty body, and requires no metadata
// entry of its own.
func (t *Terminal) Marshal() (*pb.Definition, error) {
	g := serialize.NewGraph()
	in, err := g.Register(outputAdapter{t.out})
	if err != nil {
		return nil, err
	}
	def := g.Definition()

	term := &pb.Op{Inputs: []*pb.Input{in}}
	b, err := term.Marshal()
	if err != nil {
		return nil, err
	}
	def.Def = append(def.Def, b)
	return def, nil
}

// WriteTo encodes the graph's Definition and writes it to w, the form a
// BuildKit daemon expects on its control-plane wire.
func (t *Terminal) WriteTo(w io.Writer) (int64, error) {
	def, err := t.Marshal()
	if err != nil {
		return 0, err
	}
	b, err := def.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// manifestEntry is one node in a ToManifest rendering.
type manifestEntry struct {
	Digest   string          `json:"digest"`
	Metadata json.RawMessage `json:"metadata"`
}

// ToManifest renders the graph as an indented, canonicalized JSON document,
// one entry per distinct node sorted by digest (SPEC_FULL.md §4.4 addition).
// It exists purely for inspecting a graph during development - the bytes a
// daemon actually consumes always come from WriteTo.
func (t *Terminal) ToManifest() ([]byte, error) {
	def, err := t.Marshal()
	if err != nil {
		return nil, err
	}

	digests := make([]string, 0, len(def.Metadata))
	for d := range def.Metadata {
		digests = append(digests, d)
	}
	sort.Strings(digests)

	entries := make([]manifestEntry, 0, len(digests))
	for _, d := range digests {
		canon, err := def.Metadata[d].CanonicalJSON()
		if err != nil {
			return nil, err
		}
		entries = append(entries, manifestEntry{Digest: d, Metadata: canon})
	}
	return json.MarshalIndent(entries, "", "  ")
}
