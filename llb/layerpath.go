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

// LayerPath identifies a path inside a layer, in one of three ways
// (spec §3): an implicit empty layer, a path in another operation's
// output, or a path in a prior step's output within the same file
// sequence. Exactly one of the three constructors below produces a valid
// LayerPath; the zero value is not meaningful on its own.
type LayerPath struct {
	kind layerPathKind
	path string
	// set only when kind == layerPathOther
	other Output
	// set only when kind == layerPathOwn
	own OwnOutputIndex
}

type layerPathKind int

const (
	layerPathScratch layerPathKind = iota
	layerPathOther
	layerPathOwn
)

// Scratch identifies a path inside an implicit empty layer.
func Scratch(path string) LayerPath {
	return LayerPath{kind: layerPathScratch, path: path}
}

// Other identifies a path inside another operation's output.
func Other(src Output, path string) LayerPath {
	return LayerPath{kind: layerPathOther, path: path, other: src}
}

// Own identifies a path inside a prior step's output within the same file
// sequence.
func Own(idx OwnOutputIndex, path string) LayerPath {
	return LayerPath{kind: layerPathOwn, path: path, own: idx}
}

// Path returns the path component, regardless of which layer it names.
func (l LayerPath) Path() string { return l.path }
