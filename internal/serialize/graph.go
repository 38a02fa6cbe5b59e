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

// Package serialize walks a graph of llb operation builders and turns it
// into the content-addressed wire form BuildKit's daemon consumes: each
// node digested by SHA-256 over its own canonical encoding, referenced by
// every downstream node solely through that digest (spec §3, §4.4).
package serialize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pillarhq/llb/pkg/pb"
)

// Vertex is the surface a graph node exposes to the serializer. It mirrors
// llb's unexported vertex interface; this package never imports llb (that
// would be a cycle - llb/terminal.go depends on this package instead), so
// Terminal passes its root vertex through this interface at the call site.
type Vertex interface {
	ID() int64
	Inputs() []Output
	Marshal() (*pb.Op, *pb.OpMetadata)
}

// Output names one output of a Vertex.
type Output interface {
	VertexValue() Vertex
	IndexValue() int64
}

// node is one already-registered graph node: its digest and encoded bytes,
// kept alongside its metadata for the final Definition assembly.
type node struct {
	digest   string
	bytes    []byte
	metadata *pb.OpMetadata
}

// Graph recursively registers vertices by id, in first-discovery order, and
// resolves every input edge to the upstream node's digest. A Graph is not
// safe for concurrent use; each Terminal serialization builds its own.
type Graph struct {
	byID  map[int64]string // operation id -> digest, once registered
	order []string         // digests in first-discovery (post-order) order
	nodes map[string]*node
}

// NewGraph constructs an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		byID:  map[int64]string{},
		nodes: map[string]*node{},
	}
}

// Register recursively serializes v and everything it depends on, and
// returns v's own digest and output index as a resolved pb.Input. Calling
// Register twice for the same operation id returns the same digest without
// re-walking or re-encoding it - the sharing guarantee spec §5 requires.
func (g *Graph) Register(out Output) (*pb.Input, error) {
	v := out.VertexValue()
	digest, err := g.registerVertex(v)
	if err != nil {
		return nil, err
	}
	return &pb.Input{Digest: digest, Index: out.IndexValue()}, nil
}

func (g *Graph) registerVertex(v Vertex) (string, error) {
	id := v.ID()
	if digest, ok := g.byID[id]; ok {
		return digest, nil
	}

	// Resolve upstream edges before this node's own bytes, so the digest
	// this node embeds for each input is already final.
	var inputs []*pb.Input
	for _, up := range v.Inputs() {
		in, err := g.Register(up)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, in)
	}

	op, md := v.Marshal()
	op.Inputs = inputs

	b, err := op.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshaling op: %v", err)
	}
	sum := sha256.Sum256(b)
	digest := "sha256:" + hex.EncodeToString(sum[:])

	g.byID[id] = digest
	if _, seen := g.nodes[digest]; !seen {
		g.nodes[digest] = &node{digest: digest, bytes: b, metadata: md}
		g.order = append(g.order, digest)
	}
	return digest, nil
}

// Definition assembles every node registered so far into the final
// envelope, in first-discovery order (spec §4.4 step 4).
func (g *Graph) Definition() *pb.Definition {
	def := &pb.Definition{Metadata: map[string]*pb.OpMetadata{}}
	for _, digest := range g.order {
		n := g.nodes[digest]
		def.Def = append(def.Def, n.bytes)
		def.Metadata[digest] = n.metadata
	}
	return def
}
