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

// ExecOp is a command-execution operation: one root mount plus zero or
// more non-root mounts (spec §4.2).
type ExecOp struct {
	opID        operationID
	meta        execMeta
	root        *Mount
	nonRoot     []Mount
	customName  string
	ignoreCache bool
}

// Command constructs an ExecOp whose argv[0] is name, with no mounts yet.
func Command(name string) *ExecOp {
	return &ExecOp{opID: newOperationID(), meta: newExecMeta(name)}
}

// Args replaces the command's arguments (argv[1:]).
func (e *ExecOp) Args(args ...string) *ExecOp {
	e.meta.setArgs(args)
	return e
}

// Env appends one NAME=VALUE environment variable.
func (e *ExecOp) Env(key, value string) *ExecOp {
	e.meta.addEnv(key, value)
	return e
}

// EnvBatch appends every variable in vars, in order.
func (e *ExecOp) EnvBatch(vars ...EnvVar) *ExecOp {
	e.meta.addEnvBatch(vars)
	return e
}

// Cwd sets the working directory (default "/").
func (e *ExecOp) Cwd(dir string) *ExecOp {
	e.meta.setCwd(dir)
	return e
}

// User sets the user (default "root").
func (e *ExecOp) User(user string) *ExecOp {
	e.meta.setUser(user)
	return e
}

// Hostname sets the container hostname (SPEC_FULL.md §4.2 addition).
func (e *ExecOp) Hostname(name string) *ExecOp {
	e.meta.hostname = name
	return e
}

// AddExtraHost records an extra /etc/hosts entry, "host=ip"
// (SPEC_FULL.md §4.2 addition).
func (e *ExecOp) AddExtraHost(host, ip string) *ExecOp {
	e.meta.extraHosts = append(e.meta.extraHosts, host+"="+ip)
	return e
}

// CustomName sets the operation's display name.
func (e *ExecOp) CustomName(name string) *ExecOp {
	e.customName = name
	return e
}

// IgnoreCache marks the operation as always needing to re-run.
func (e *ExecOp) IgnoreCache() *ExecOp {
	e.ignoreCache = true
	return e
}

// AddMount declares m on this command. If m's destination is "/", it
// becomes the root mount, silently superseding any previously declared
// root mount (spec §9: "most recently declared root mount wins"); SSH
// mounts are never treated as root even when their destination is "/".
// Non-root mounts are kept in declaration order.
func (e *ExecOp) AddMount(m Mount) *ExecOp {
	if m.isRoot() {
		root := m
		e.root = &root
		return e
	}
	e.nonRoot = append(e.nonRoot, m)
	return e
}

// GetMount returns an Output naming the output a Layer or ScratchMount
// mount allocates, for use as a source elsewhere in the graph (e.g. a
// FileSystem sequence copying out of this command's result). The mount
// must already have been added with AddMount.
func (e *ExecOp) GetMount(dest string) Output {
	if e.root != nil && e.root.dest == dest {
		return newOutput(e, OutputIndex(e.root.outputIndex()))
	}
	for _, m := range e.nonRoot {
		if m.dest == dest {
			return newOutput(e, OutputIndex(m.outputIndex()))
		}
	}
	return nil
}

func (e *ExecOp) id() operationID { return e.opID }

// orderedMounts returns the mounts in wire order: root first (if present),
// then non-root mounts in declaration order (spec §4.2 step 1).
func (e *ExecOp) orderedMounts() []Mount {
	mounts := make([]Mount, 0, len(e.nonRoot)+1)
	if e.root != nil {
		mounts = append(mounts, *e.root)
	}
	mounts = append(mounts, e.nonRoot...)
	return mounts
}

func (e *ExecOp) inputs() []Output {
	var ins []Output
	for _, m := range e.orderedMounts() {
		if m.hasInputEdge() {
			ins = append(ins, m.src)
		}
	}
	return ins
}

func (e *ExecOp) marshal() (*pb.Op, *pb.OpMetadata) {
	mounts := e.orderedMounts()
	wireMounts := make([]*pb.Mount, 0, len(mounts))
	caps := map[string]bool{}

	// spec §4.2 step 2-3: assign input indices in wire order, advancing
	// the running counter only for mounts that contribute an input edge.
	// These indices are positions into this node's own Inputs list; the
	// serializer fills that list's (digest, index) pairs separately, from
	// e.inputs(), after resolving each upstream operation.
	var lastInputIndex int64
	for _, m := range mounts {
		input := int64(-1)
		if m.hasInputEdge() {
			input = lastInputIndex
			lastInputIndex++
		}
		wireMounts = append(wireMounts, m.toWire(input))
		for _, c := range m.caps() {
			caps[c] = true
		}
	}

	op := &pb.Op{
		Exec: &pb.ExecOp{
			Meta: &pb.Meta{
				Args:       e.meta.argv(),
				Env:        e.meta.env,
				Cwd:        e.meta.cwd,
				User:       e.meta.user,
				Hostname:   e.meta.hostname,
				ExtraHosts: e.meta.extraHosts,
			},
			Mounts:   wireMounts,
			Network:  pb.NetModeUnset,
			Security: pb.SecurityModeSandbox,
		},
	}

	md := &pb.OpMetadata{IgnoreCache: e.ignoreCache}
	if len(caps) > 0 {
		md.Caps = caps
	}
	if e.customName != "" {
		md.Description = map[string]string{pb.CustomNameKey: e.customName}
	}
	return op, md
}
