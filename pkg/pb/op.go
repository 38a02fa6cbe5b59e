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

// NetMode mirrors the exec op's declared network mode. Only "unset" is ever
// produced by this package; the enum exists because the wire contract
// carries it on every ExecOp.
type NetMode int32

const (
	NetModeUnset NetMode = 0
	NetModeHost  NetMode = 1
	NetModeNone  NetMode = 2
)

// SecurityMode mirrors the exec op's declared security mode. Only "sandbox"
// is ever produced by this package.
type SecurityMode int32

const (
	SecurityModeSandbox  SecurityMode = 0
	SecurityModeInsecure SecurityMode = 1
)

// MountType classifies how a Mount's source is attached.
type MountType int32

const (
	MountTypeBind  MountType = 0
	MountTypeCache MountType = 1
	MountTypeSSH   MountType = 2
)

// CacheSharingOpt mirrors BuildKit's cache-mount sharing policy. This
// package only ever emits CacheSharingShared (spec §4.2).
type CacheSharingOpt int32

const (
	CacheSharingShared  CacheSharingOpt = 0
	CacheSharingPrivate CacheSharingOpt = 1
	CacheSharingLocked  CacheSharingOpt = 2
)

// Input is an edge from a node to one output of an upstream node, addressed
// by the upstream node's digest rather than by any in-process pointer or id
// - this is what keeps the encoding independent of allocation order.
type Input struct {
	Digest string
	Index  int64
}

// Marshal encodes the Input as a length-delimited embedded message body
// (the caller wraps it with a field tag at the call site).
func (in *Input) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, in.Digest)
	b = appendTagVarint(b, 2, in.Index)
	return b
}

// SourceOp is the wire shape of an image/git/http/local source node: just
// an identifier string plus a free-form attribute map (spec §4.1).
type SourceOp struct {
	Identifier string
	Attrs      map[string]string
}

func (s *SourceOp) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, s.Identifier)
	b = encodeStringMap(b, 2, s.Attrs)
	return b
}

// Meta carries the argv/env/cwd/user execution context of an ExecOp, plus
// the additive hostname/extra-hosts fields (SPEC_FULL.md §4.2).
type Meta struct {
	Args       []string
	Env        []string
	Cwd        string
	User       string
	Hostname   string
	ExtraHosts []string // "host=ip" pairs, preserved in declaration order
}

func (m *Meta) Marshal() []byte {
	var b []byte
	for _, a := range m.Args {
		b = appendTagString(b, 1, a)
	}
	for _, e := range m.Env {
		b = appendTagString(b, 2, e)
	}
	b = appendTagString(b, 3, m.Cwd)
	b = appendTagString(b, 4, m.User)
	b = appendTagString(b, 5, m.Hostname)
	for _, h := range m.ExtraHosts {
		b = appendTagString(b, 6, h)
	}
	return b
}

// CacheOpt is attached to SharedCache mounts: spec §4.2 step 5 fixes
// Sharing to CacheSharingShared and ID to the mount's destination path.
type CacheOpt struct {
	ID      string
	Sharing CacheSharingOpt
}

func (c *CacheOpt) Marshal() []byte {
	var b []byte
	b = appendTagString(b, 1, c.ID)
	b = appendTagVarint(b, 2, int64(c.Sharing))
	return b
}

// SSHOpt is attached to OptionalSshAgent mounts: spec §4.2 step 5 fixes
// Mode to 0o600 and Optional to true.
type SSHOpt struct {
	Mode     uint32
	Optional bool
}

func (s *SSHOpt) Marshal() []byte {
	var b []byte
	b = appendTagVarint(b, 1, int64(s.Mode))
	b = appendTagBool(b, 2, s.Optional)
	return b
}

// Mount is the wire shape of one exec mount (spec §4.2's mount table).
type Mount struct {
	Input    int64
	Dest     string
	Output   int64
	Readonly bool
	Selector string
	Type     MountType
	CacheOpt *CacheOpt
	SSHOpt   *SSHOpt
}

func (m *Mount) Marshal() []byte {
	var b []byte
	b = appendTagVarint(b, 1, m.Input)
	b = appendTagString(b, 2, m.Dest)
	b = appendTagVarint(b, 3, m.Output)
	b = appendTagBool(b, 4, m.Readonly)
	b = appendTagString(b, 5, m.Selector)
	b = appendTagVarint(b, 6, int64(m.Type))
	if m.CacheOpt != nil {
		b = appendTagMessage(b, 7, m.CacheOpt.Marshal())
	}
	if m.SSHOpt != nil {
		b = appendTagMessage(b, 8, m.SSHOpt.Marshal())
	}
	return b
}

// ExecOp is the wire shape of a command execution node (spec §4.2).
type ExecOp struct {
	Meta     *Meta
	Mounts   []*Mount
	Network  NetMode
	Security SecurityMode
}

func (e *ExecOp) Marshal() []byte {
	var b []byte
	if e.Meta != nil {
		b = appendTagMessage(b, 1, e.Meta.Marshal())
	}
	for _, m := range e.Mounts {
		b = appendTagMessage(b, 2, m.Marshal())
	}
	b = appendTagVarint(b, 3, int64(e.Network))
	b = appendTagVarint(b, 4, int64(e.Security))
	return b
}

// Op is one serialized graph node: its input edges plus exactly one of
// Source, Exec, or File (spec §6's "Op variants").
type Op struct {
	Inputs []*Input
	Source *SourceOp
	Exec   *ExecOp
	File   *FileOp
}

// Marshal returns the deterministic, canonical encoding of the node. Equal
// Op values always produce byte-identical output (spec's digest-stability
// invariant); the field order here is fixed and never varies with how the
// Op was constructed.
func (op *Op) Marshal() ([]byte, error) {
	var b []byte
	for _, in := range op.Inputs {
		b = appendTagMessage(b, 1, in.Marshal())
	}
	switch {
	case op.Source != nil:
		b = appendTagMessage(b, 2, op.Source.Marshal())
	case op.Exec != nil:
		b = appendTagMessage(b, 3, op.Exec.Marshal())
	case op.File != nil:
		b = appendTagMessage(b, 4, op.File.Marshal())
	}
	return b, nil
}
