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

package pb

// FileActionCopy is the wire shape of a Copy action (spec §4.3). mode,
// timestamp, and owner are hard-wired sentinels per spec §9; they are never
// made configurable by this package.
type FileActionCopy struct {
	Src             string
	FollowSymlink   bool
	DirCopyContents bool
	CreateDestPath  bool
	AllowWildcard   bool
	Mode            int64
	Timestamp       int64
}

func (c *FileActionCopy) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, c.Src)
	b = appendTagBool(b, 2, c.FollowSymlink)
	b = appendTagBool(b, 3, c.DirCopyContents)
	b = appendTagBool(b, 4, c.CreateDestPath)
	b = appendTagBool(b, 5, c.AllowWildcard)
	b = appendTagVarint(b, 6, c.Mode)
	b = appendTagVarint(b, 7, c.Timestamp)
	return b
}

// FileActionMkDir is the wire shape of a MakeDir action.
type FileActionMkDir struct {
	Path        string
	MakeParents bool
	Mode        int64
	Timestamp   int64
}

func (m *FileActionMkDir) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, m.Path)
	b = appendTagBool(b, 2, m.MakeParents)
	b = appendTagVarint(b, 3, m.Mode)
	b = appendTagVarint(b, 4, m.Timestamp)
	return b
}

// FileActionMkFile is the wire shape of a MakeFile action.
type FileActionMkFile struct {
	Path      string
	Mode      int64
	Timestamp int64
	Data      []byte
}

func (m *FileActionMkFile) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, m.Path)
	b = appendTagVarint(b, 2, m.Mode)
	b = appendTagVarint(b, 3, m.Timestamp)
	b = appendTagBytes(b, 4, m.Data)
	return b
}

// FileActionRm is the wire shape of a Rm action (SPEC_FULL.md §4.3 addition).
type FileActionRm struct {
	Path          string
	AllowNotFound bool
}

func (r *FileActionRm) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, r.Path)
	b = appendTagBool(b, 2, r.AllowNotFound)
	return b
}

// FileAction is one step of a FileOp sequence: exactly one of Copy, Mkdir,
// Mkfile, or Rm, plus the resolved input/secondary_input/output indices
// (spec §4.3's index arithmetic).
type FileAction struct {
	Input          int64
	SecondaryInput int64
	Output         int64
	Copy           *FileActionCopy
	Mkdir          *FileActionMkDir
	Mkfile         *FileActionMkFile
	Rm             *FileActionRm
}

func (a *FileAction) Marshal() []byte {
	var b []byte
	b = appendTagVarint(b, 1, a.Input)
	b = appendTagVarint(b, 2, a.SecondaryInput)
	b = appendTagVarint(b, 3, a.Output)
	switch {
	case a.Copy != nil:
		b = appendTagMessage(b, 4, a.Copy.Marshal())
	case a.Mkdir != nil:
		b = appendTagMessage(b, 5, a.Mkdir.Marshal())
	case a.Mkfile != nil:
		b = appendTagMessage(b, 6, a.Mkfile.Marshal())
	case a.Rm != nil:
		b = appendTagMessage(b, 7, a.Rm.Marshal())
	}
	return b
}

// FileOp is the wire shape of a file-sequence node: an ordered list of
// actions sharing one node (spec §4.3).
type FileOp struct {
	Actions []*FileAction
}

func (f *FileOp) Marshal() []byte {
	var b []byte
	for _, a := range f.Actions {
		b = appendTagMessage(b, 1, a.Marshal())
	}
	return b
}
