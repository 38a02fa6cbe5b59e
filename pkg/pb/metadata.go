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

import "sort"

// Capability flag names declared on operation metadata (spec §4.2's table
// and §4.3's file.base).
const (
	CapExecMountBind         = "exec.mount.bind"
	CapExecMountSelector     = "exec.mount.selector"
	CapExecMountCache        = "exec.mount.cache"
	CapExecMountCacheSharing = "exec.mount.cache.sharing"
	CapExecMountSSH          = "exec.mount.ssh"
	CapFileBase              = "file.base"
)

// CustomNameKey is the metadata description key holding a caller-supplied
// display name (spec §4.1/§4.2/§4.3).
const CustomNameKey = "llb.customname"

// OpMetadata is the side-table entry for one node: description strings,
// declared capabilities, and the ignore-cache flag (spec §6).
type OpMetadata struct {
	Caps        map[string]bool
	Description map[string]string
	IgnoreCache bool
}

func (m *OpMetadata) Marshal() []byte {
	var b []byte
	b = encodeBoolMap(b, 1, m.Caps)
	b = encodeStringMap(b, 2, m.Description)
	b = appendTagBool(b, 3, m.IgnoreCache)
	return b
}

// Definition is the final envelope written to the BuildKit daemon: the
// concatenated node bytes in discovery order, plus a digest-keyed metadata
// map (spec §4.4 step 4).
type Definition struct {
	Def      [][]byte
	Metadata map[string]*OpMetadata
}

// Marshal encodes the envelope itself as a message body (no length prefix):
// a repeated bytes field for Def, and a sorted-by-key map field for Metadata
// so that, like every other map-typed field in this package, the output
// never depends on map iteration order.
func (d *Definition) Marshal() ([]byte, error) {
	var b []byte
	for _, node := range d.Def {
		b = appendTagBytes(b, 1, node)
	}
	keys := make([]string, 0, len(d.Metadata))
	for k := range d.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = appendTagString(entry, 1, k)
		entry = appendTagMessage(entry, 2, d.Metadata[k].Marshal())
		b = appendTagMessage(b, 2, entry)
	}
	return b, nil
}
