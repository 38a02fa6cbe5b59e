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

// mountKind enumerates the six mount variants of spec §4.2's table.
type mountKind int

const (
	mountReadOnlyLayer mountKind = iota
	mountReadOnlySelector
	mountLayer
	mountScratch
	mountSharedCache
	mountOptionalSSHAgent
)

// Mount is one mount declared on a Command. Construct values with the
// ReadOnlyLayer, ReadOnlySelector, Layer, ScratchMount, SharedCache, and
// OptionalSSHAgent functions below; the zero value is not meaningful.
type Mount struct {
	kind     mountKind
	dest     string
	src      Output // set for ReadOnlyLayer, ReadOnlySelector, Layer
	selector string // set for ReadOnlySelector
	out      OutputIndex
}

// ReadOnlyLayer mounts src read-only at dest. It contributes an input edge
// and no output.
func ReadOnlyLayer(src Output, dest string) Mount {
	return Mount{kind: mountReadOnlyLayer, dest: dest, src: src}
}

// ReadOnlySelector mounts, read-only at dest, the path "selector" within
// src's layer. Per spec's design notes, dest is the first path parameter
// and the in-layer selector is the second; each lands in the wire field of
// the same name (selector -> wire `selector`, dest -> wire `dest`).
func ReadOnlySelector(src Output, dest, selector string) Mount {
	return Mount{kind: mountReadOnlySelector, dest: dest, src: src, selector: selector}
}

// Layer mounts src read-write at dest, allocating out as a new output of
// the Command. It contributes one input edge.
func Layer(out OutputIndex, src Output, dest string) Mount {
	return Mount{kind: mountLayer, dest: dest, src: src, out: out}
}

// ScratchMount mounts an implicit empty layer read-write at dest,
// allocating out as a new output. It contributes no input edge.
func ScratchMount(out OutputIndex, dest string) Mount {
	return Mount{kind: mountScratch, dest: dest, out: out}
}

// SharedCache mounts a cache identified by dest; it never contributes an
// input edge or an output. Like any non-SSH mount, it becomes the root
// mount when dest is "/".
func SharedCache(dest string) Mount {
	return Mount{kind: mountSharedCache, dest: dest}
}

// OptionalSSHAgent mounts an optional SSH agent socket at dest; like
// SharedCache, it contributes no input edge and no output. Unlike every
// other mount, it is never a root mount, even when dest is "/".
func OptionalSSHAgent(dest string) Mount {
	return Mount{kind: mountOptionalSSHAgent, dest: dest}
}

// isRoot reports whether this mount's destination makes it eligible to be
// the Command's root mount (spec §4.2: any mount whose destination is "/",
// except SSH mounts, which are never root).
func (m Mount) isRoot() bool {
	return m.dest == "/" && m.kind != mountOptionalSSHAgent
}

// hasInputEdge reports whether this mount contributes an input edge (spec
// §4.2's table: scratch, cache, and optional-SSH mounts never do).
func (m Mount) hasInputEdge() bool {
	switch m.kind {
	case mountScratch, mountSharedCache, mountOptionalSSHAgent:
		return false
	default:
		return true
	}
}

// outputIndex returns the allocated output index, or -1 if this mount
// allocates none.
func (m Mount) outputIndex() int64 {
	switch m.kind {
	case mountLayer, mountScratch:
		return int64(m.out)
	default:
		return -1
	}
}

func (m Mount) readonly() bool {
	switch m.kind {
	case mountReadOnlyLayer, mountReadOnlySelector:
		return true
	default:
		return false
	}
}

// caps returns the capability flags this mount declares (spec §4.2's
// table).
func (m Mount) caps() []string {
	switch m.kind {
	case mountReadOnlyLayer:
		return []string{pb.CapExecMountBind}
	case mountReadOnlySelector:
		return []string{pb.CapExecMountBind, pb.CapExecMountSelector}
	case mountLayer:
		return []string{pb.CapExecMountBind}
	case mountScratch:
		return []string{pb.CapExecMountBind}
	case mountSharedCache:
		return []string{pb.CapExecMountCache, pb.CapExecMountCacheSharing}
	case mountOptionalSSHAgent:
		return []string{pb.CapExecMountSSH}
	default:
		return nil
	}
}

// toWire renders this mount's wire shape given the already-resolved input
// index (-1 if hasInputEdge is false, the pre-increment running counter
// value otherwise - the caller in exec.go owns that bookkeeping).
func (m Mount) toWire(input int64) *pb.Mount {
	wm := &pb.Mount{
		Input:    input,
		Dest:     m.dest,
		Output:   m.outputIndex(),
		Readonly: m.readonly(),
		Type:     pb.MountTypeBind,
	}
	switch m.kind {
	case mountReadOnlySelector:
		wm.Selector = m.selector
	case mountSharedCache:
		wm.Type = pb.MountTypeCache
		wm.CacheOpt = &pb.CacheOpt{ID: m.dest, Sharing: pb.CacheSharingShared}
	case mountOptionalSSHAgent:
		wm.Type = pb.MountTypeSSH
		wm.SSHOpt = &pb.SSHOpt{Mode: 0o600, Optional: true}
	}
	return wm
}
