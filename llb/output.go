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

import "github.com/pillarhq/llb/pkg/pb"

// OutputIndex names one of the outputs a multi-output operation produces.
type OutputIndex int64

// OwnOutputIndex names a prior step's output within the same file-sequence
// operation. It is a disjoint namespace from OutputIndex: the two are never
// comparable and are only ever resolved through their own LayerPath variant
// (spec §3).
type OwnOutputIndex int64

// vertex is the minimal surface every operation builder implements so the
// serializer can recursively register its upstream graph. It is
// intentionally unexported: callers never implement this themselves, they
// only construct the concrete operations this package provides.
type vertex interface {
	// id returns this operation's process-local identity, used to
	// deduplicate the node during serialization.
	id() operationID
	// inputs returns one upstream Output per input reference this
	// operation makes, in the order its own wire encoding will reference
	// them. The same upstream output referenced twice appears twice.
	inputs() []Output
	// marshal returns this operation's own pb.Op (without resolving
	// inputs into digests - the serializer does that) and its metadata.
	marshal() (*pb.Op, *pb.OpMetadata)
}

// Output is a reference to one output of an operation: the (target
// operation, output index) pair of spec §3's OperationOutput. It is
// used both as a borrowed reference (bounded by the builder's lifetime) and
// as an owned reference held by several consumers of the same builder;
// both uses serialize identically, since serialization only ever asks
// an Output for its target vertex and index, never for its identity.
type Output interface {
	// Vertex returns the operation that produces this output.
	Vertex() vertex
	// Index returns which of that operation's outputs this reference
	// names.
	Index() OutputIndex
}

// output is the concrete implementation shared by every operation builder
// in this package. Because Go values referenced through a pointer are
// already shared by the garbage collector, "borrowed" and "owned" need no
// separate runtime representation here: a single struct holding a plain
// pointer to the vertex serves both of spec §5's sharing modes. What
// differs between "borrowed" and "owned" is purely a documentation-level
// lifetime contract, not a data-level distinction - the spec requires that
// the two serialize identically, and a single type trivially guarantees
// that.
type output struct {
	op  vertex
	idx OutputIndex
}

func (o *output) Vertex() vertex     { return o.op }
func (o *output) Index() OutputIndex { return o.idx }

// newOutput builds an Output naming output idx of op.
func newOutput(op vertex, idx OutputIndex) Output {
	return &output{op: op, idx: idx}
}
