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

import "testing"

func TestExecOpReadOnlyLayerAtSlashBecomesRoot(t *testing.T) {
	e := Command("/bin/sh").Args("-c", "echo hi")
	img := Image("alpine").Output()
	e.AddMount(ReadOnlyLayer(img, "/"))
	mounts := e.orderedMounts()
	if len(mounts) != 1 || !mounts[0].isRoot() {
		t.Fatalf("expected a single root mount, got %+v", mounts)
	}
}

func TestExecOpLastRootMountWins(t *testing.T) {
	e := Command("/bin/sh")
	first := Image("alpine").Output()
	second := Image("debian").Output()
	e.AddMount(ReadOnlyLayer(first, "/"))
	e.AddMount(ReadOnlyLayer(second, "/"))
	if e.root.src != second {
		t.Fatalf("expected the second root mount to win")
	}
}

func TestExecOpSSHMountNeverRoot(t *testing.T) {
	e := Command("/bin/sh")
	e.AddMount(OptionalSSHAgent("/"))
	if e.root != nil {
		t.Fatalf("an SSH mount at \"/\" must never become the root mount")
	}
	if len(e.nonRoot) != 1 {
		t.Fatalf("expected the SSH mount to be recorded as non-root")
	}
}

func TestExecOpMountInputIndicesSkipScratchAndCache(t *testing.T) {
	e := Command("/bin/sh")
	img := Image("alpine").Output()
	cacheImg := Image("cache-seed").Output()

	e.AddMount(ReadOnlyLayer(img, "/"))
	e.AddMount(ScratchMount(0, "/scratch"))
	e.AddMount(SharedCache("/cache"))
	e.AddMount(Layer(1, cacheImg, "/data"))

	op, _ := e.marshal()
	mounts := op.Exec.Mounts
	if len(mounts) != 4 {
		t.Fatalf("expected 4 wire mounts, got %d", len(mounts))
	}
	// root (index 0), scratch (no input edge => -1), cache (no input
	// edge => -1), data layer (index 1).
	want := []int64{0, -1, -1, 1}
	for i, m := range mounts {
		if m.Input != want[i] {
			t.Errorf("mount %d: Input = %d, want %d", i, m.Input, want[i])
		}
	}
}

func TestExecOpInputsMatchMountsWithEdges(t *testing.T) {
	e := Command("/bin/sh")
	img := Image("alpine").Output()
	e.AddMount(ReadOnlyLayer(img, "/"))
	e.AddMount(ScratchMount(0, "/scratch"))

	ins := e.inputs()
	if len(ins) != 1 {
		t.Fatalf("expected 1 input (scratch mounts don't contribute an edge), got %d", len(ins))
	}
	if ins[0].Vertex() != img.Vertex() {
		t.Fatalf("expected the single input to reference the image source")
	}
}

func TestExecOpGetMountResolvesByDestination(t *testing.T) {
	e := Command("/bin/sh")
	e.AddMount(ScratchMount(0, "/out"))
	out := e.GetMount("/out")
	if out == nil {
		t.Fatalf("GetMount(\"/out\") returned nil")
	}
	if out.Index() != 0 {
		t.Fatalf("GetMount(\"/out\").Index() = %d, want 0", out.Index())
	}
	if e.GetMount("/nope") != nil {
		t.Fatalf("GetMount for an undeclared destination should return nil")
	}
}

func TestExecOpExtraHostsAndHostname(t *testing.T) {
	e := Command("/bin/sh").Hostname("builder").AddExtraHost("db", "10.0.0.1")
	op, _ := e.marshal()
	if op.Exec.Meta.Hostname != "builder" {
		t.Fatalf("Hostname = %q, want %q", op.Exec.Meta.Hostname, "builder")
	}
	if len(op.Exec.Meta.ExtraHosts) != 1 || op.Exec.Meta.ExtraHosts[0] != "db=10.0.0.1" {
		t.Fatalf("ExtraHosts = %v, want [db=10.0.0.1]", op.Exec.Meta.ExtraHosts)
	}
}

func TestExecOpCapsAggregateAcrossMounts(t *testing.T) {
	e := Command("/bin/sh")
	e.AddMount(ScratchMount(0, "/"))
	e.AddMount(SharedCache("/cache"))
	e.AddMount(OptionalSSHAgent("/ssh"))
	_, md := e.marshal()
	for _, c := range []string{"exec.mount.bind", "exec.mount.cache", "exec.mount.cache.sharing", "exec.mount.ssh"} {
		if !md.Caps[c] {
			t.Errorf("expected capability %q to be set", c)
		}
	}
}
