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

// fileAction is the package-internal surface every file-sequence action
// implements. It is intentionally unexported: callers only ever hold a
// *CopyAction, *MkdirAction, *MkfileAction, or *RmAction, produced by the
// constructors below.
type fileAction interface {
	// orderedRefs returns, in the exact order spec §4.3 step 1 appends
	// them to the sequence-wide input list, every LayerPath this action
	// references. Copy always returns [from, to]; Mkdir, Mkfile, and Rm
	// always return a single-element slice, [path].
	orderedRefs() []LayerPath
	// build renders the wire FileAction given resolved, the already
	// spec-§4.3-step-3-resolved index for each entry orderedRefs
	// returned, in the same order.
	build(resolved []int64) *pb.FileAction
	// outputIndex returns the caller-supplied output this action
	// produces, or -1 if it produces none.
	outputIndex() int64
}

// --- Copy, with its three-phase typestate (spec §9) ---

// copyNoSource is the "no source" phase: the zero-argument result of Copy.
type copyNoSource struct{}

// Copy begins a Copy action. Chain .From(...).To(...) to reach the
// terminal, appendable phase; a Copy value in an earlier phase cannot be
// appended to a FileOp, which is enforced at compile time by each phase
// exposing only the next method in the chain.
func Copy() copyNoSource { return copyNoSource{} }

// From transitions to the "source set" phase.
func (copyNoSource) From(from LayerPath) copyWithSource {
	return copyWithSource{from: from}
}

// copyWithSource is the "source set" phase.
type copyWithSource struct {
	from LayerPath
}

// To transitions to the terminal phase, the only one appendable to a
// FileOp. out is the output index this copy allocates; to is the
// destination path.
func (c copyWithSource) To(out OutputIndex, to LayerPath) *CopyAction {
	return &CopyAction{from: c.from, to: to, out: out}
}

// CopyAction is a terminal Copy action: source and destination are both
// set, and it is ready to be appended to a FileOp.
type CopyAction struct {
	from LayerPath
	to   LayerPath
	out  OutputIndex

	followSymlinks bool
	recursive      bool
	createPath     bool
	wildcard       bool
}

// FollowSymlinks makes the copy follow symlinks in the source.
func (c *CopyAction) FollowSymlinks() *CopyAction { c.followSymlinks = true; return c }

// Recursive copies a directory's contents rather than the directory itself.
func (c *CopyAction) Recursive() *CopyAction { c.recursive = true; return c }

// CreatePath creates the destination's parent directories if missing.
func (c *CopyAction) CreatePath() *CopyAction { c.createPath = true; return c }

// Wildcard treats the source path as a glob pattern.
func (c *CopyAction) Wildcard() *CopyAction { c.wildcard = true; return c }

func (c *CopyAction) orderedRefs() []LayerPath { return []LayerPath{c.from, c.to} }
func (c *CopyAction) outputIndex() int64       { return int64(c.out) }

func (c *CopyAction) build(resolved []int64) *pb.FileAction {
	return &pb.FileAction{
		Input:          resolved[1], // destination resolution
		SecondaryInput: resolved[0], // source resolution
		Output:         c.outputIndex(),
		Copy: &pb.FileActionCopy{
			Src:             c.from.Path(),
			FollowSymlink:   c.followSymlinks,
			DirCopyContents: c.recursive,
			CreateDestPath:  c.createPath,
			AllowWildcard:   c.wildcard,
			Mode:            -1,
			Timestamp:       -1,
		},
	}
}

// --- MakeDir ---

// MkdirAction creates a directory at path.
type MkdirAction struct {
	out         OutputIndex
	path        LayerPath
	makeParents bool
}

// Mkdir constructs a MkdirAction allocating out at path.
func Mkdir(out OutputIndex, path LayerPath) *MkdirAction {
	return &MkdirAction{out: out, path: path}
}

// MakeParents creates missing parent directories too.
func (m *MkdirAction) MakeParents() *MkdirAction { m.makeParents = true; return m }

func (m *MkdirAction) orderedRefs() []LayerPath { return []LayerPath{m.path} }
func (m *MkdirAction) outputIndex() int64       { return int64(m.out) }

func (m *MkdirAction) build(resolved []int64) *pb.FileAction {
	return &pb.FileAction{
		Input:          resolved[0],
		SecondaryInput: -1,
		Output:         m.outputIndex(),
		Mkdir: &pb.FileActionMkDir{
			Path:        m.path.Path(),
			MakeParents: m.makeParents,
			Mode:        -1,
			Timestamp:   -1,
		},
	}
}

// --- MakeFile ---

// MkfileAction creates a file at path with the given contents.
type MkfileAction struct {
	out  OutputIndex
	path LayerPath
	data []byte
}

// Mkfile constructs a MkfileAction allocating out at path with data as its
// contents (data may be nil for an empty file).
func Mkfile(out OutputIndex, path LayerPath, data []byte) *MkfileAction {
	return &MkfileAction{out: out, path: path, data: data}
}

func (m *MkfileAction) orderedRefs() []LayerPath { return []LayerPath{m.path} }
func (m *MkfileAction) outputIndex() int64       { return int64(m.out) }

func (m *MkfileAction) build(resolved []int64) *pb.FileAction {
	return &pb.FileAction{
		Input:          resolved[0],
		SecondaryInput: -1,
		Output:         m.outputIndex(),
		Mkfile: &pb.FileActionMkFile{
			Path:      m.path.Path(),
			Mode:      -1,
			Timestamp: -1,
			Data:      m.data,
		},
	}
}

// --- Rm (SPEC_FULL.md §4.3 addition) ---

// RmAction removes path. It never allocates a new output.
type RmAction struct {
	path          LayerPath
	allowNotFound bool
}

// Rm constructs an RmAction for path.
func Rm(path LayerPath) *RmAction {
	return &RmAction{path: path}
}

// AllowNotFound makes the removal a no-op when path does not exist, rather
// than an error.
func (r *RmAction) AllowNotFound() *RmAction { r.allowNotFound = true; return r }

func (r *RmAction) orderedRefs() []LayerPath { return []LayerPath{r.path} }
func (r *RmAction) outputIndex() int64       { return -1 }

func (r *RmAction) build(resolved []int64) *pb.FileAction {
	return &pb.FileAction{
		Input:          resolved[0],
		SecondaryInput: -1,
		Output:         -1,
		Rm: &pb.FileActionRm{
			Path:          r.path.Path(),
			AllowNotFound: r.allowNotFound,
		},
	}
}

// --- FileOp: the sequence itself ---

// FileOp is a sequence of file actions sharing a single node (spec §4.3).
type FileOp struct {
	opID        operationID
	actions     []fileAction
	lastOutput  OutputIndex
	hasOutput   bool
	customName  string
	ignoreCache bool
}

// Files constructs an empty file-action sequence.
func Files() *FileOp {
	return &FileOp{opID: newOperationID()}
}

// Append adds a terminal action to the sequence, in order.
func (f *FileOp) Append(a fileAction) *FileOp {
	f.actions = append(f.actions, a)
	if idx := a.outputIndex(); idx >= 0 {
		f.lastOutput = OutputIndex(idx)
		f.hasOutput = true
	}
	return f
}

// LastOutput returns an Output naming the most recently appended action's
// output. It panics if no appended action has allocated an output yet.
func (f *FileOp) LastOutput() Output {
	if !f.hasOutput {
		panic("llb: FileOp has no output yet")
	}
	return newOutput(f, f.lastOutput)
}

// Output returns an Output naming a specific output index this sequence
// has produced.
func (f *FileOp) Output(idx OutputIndex) Output {
	return newOutput(f, idx)
}

// CustomName sets the operation's display name.
func (f *FileOp) CustomName(name string) *FileOp {
	f.customName = name
	return f
}

// IgnoreCache marks the operation as always needing to re-run.
func (f *FileOp) IgnoreCache() *FileOp {
	f.ignoreCache = true
	return f
}

func (f *FileOp) id() operationID { return f.opID }

// resolve implements spec §4.3's index arithmetic: it walks the actions
// once, assigning each Other-kind reference a position in the sequence-wide
// input list as it is encountered, and resolving Scratch/Own references
// that don't need that list's final length until the second pass below
// (Own references are the only ones depending on N, the total count of
// Other references).
func (f *FileOp) resolve() (globalInputs []Output, resolved [][]int64) {
	resolved = make([][]int64, len(f.actions))
	type ownRef struct {
		action, ref int
		own         OwnOutputIndex
	}
	var pending []ownRef

	for ai, a := range f.actions {
		refs := a.orderedRefs()
		row := make([]int64, len(refs))
		for ri, lp := range refs {
			switch lp.kind {
			case layerPathScratch:
				row[ri] = -1
			case layerPathOther:
				row[ri] = int64(len(globalInputs))
				globalInputs = append(globalInputs, lp.other)
			case layerPathOwn:
				pending = append(pending, ownRef{ai, ri, lp.own})
			}
		}
		resolved[ai] = row
	}

	n := int64(len(globalInputs))
	for _, p := range pending {
		resolved[p.action][p.ref] = n + int64(p.own)
	}
	return globalInputs, resolved
}

func (f *FileOp) inputs() []Output {
	ins, _ := f.resolve()
	return ins
}

func (f *FileOp) marshal() (*pb.Op, *pb.OpMetadata) {
	_, resolved := f.resolve()

	wireActions := make([]*pb.FileAction, len(f.actions))
	for i, a := range f.actions {
		wireActions[i] = a.build(resolved[i])
	}

	md := &pb.OpMetadata{
		IgnoreCache: f.ignoreCache,
		Caps:        map[string]bool{pb.CapFileBase: true},
	}
	if f.customName != "" {
		md.Description = map[string]string{pb.CustomNameKey: f.customName}
	}
	return &pb.Op{File: &pb.FileOp{Actions: wireActions}}, md
}
