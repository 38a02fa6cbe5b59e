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
	"fmt"
	"testing"

	"github.com/pillarhq/llb/internal/testutil"
)

func TestMountHasInputEdgeTable(t *testing.T) {
	img := Image("alpine").Output()
	cases := []struct {
		name string
		m    Mount
		want bool
	}{
		{"ReadOnlyLayer", ReadOnlyLayer(img, "/ro"), true},
		{"ReadOnlySelector", ReadOnlySelector(img, "/ro", "/sub"), true},
		{"Layer", Layer(0, img, "/rw"), true},
		{"ScratchMount", ScratchMount(0, "/scratch"), false},
		{"SharedCache", SharedCache("/cache"), false},
		{"OptionalSSHAgent", OptionalSSHAgent("/ssh"), false},
	}
	for _, c := range cases {
		testutil.AssertEq(t, fmt.Sprintf("%s.hasInputEdge()", c.name), c.m.hasInputEdge(), c.want)
	}
}

func TestMountOutputIndexTable(t *testing.T) {
	img := Image("alpine").Output()
	cases := []struct {
		name string
		m    Mount
		want int64
	}{
		{"ReadOnlyLayer", ReadOnlyLayer(img, "/ro"), -1},
		{"Layer", Layer(2, img, "/rw"), 2},
		{"ScratchMount", ScratchMount(5, "/scratch"), 5},
		{"SharedCache", SharedCache("/cache"), -1},
		{"OptionalSSHAgent", OptionalSSHAgent("/ssh"), -1},
	}
	for _, c := range cases {
		testutil.AssertEq(t, fmt.Sprintf("%s.outputIndex()", c.name), c.m.outputIndex(), c.want)
	}
}

func TestSharedCacheAtSlashIsRoot(t *testing.T) {
	m := SharedCache("/")
	if !m.isRoot() {
		t.Fatalf("a cache mount at \"/\" must be the root mount")
	}
}

func TestReadOnlySelectorWireFields(t *testing.T) {
	img := Image("alpine").Output()
	m := ReadOnlySelector(img, "/dest", "/inner")
	wm := m.toWire(0)
	testutil.AssertEq(t, "Dest", wm.Dest, "/dest")
	testutil.AssertEq(t, "Selector", wm.Selector, "/inner")
}
