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

import (
	"testing"

	"github.com/pillarhq/llb/internal/testutil"
)

func TestOpMarshalDeterministic(t *testing.T) {
	op := &Op{
		Inputs: []*Input{
			{Digest: "sha256:aaa", Index: 0},
			{Digest: "sha256:bbb", Index: 1},
		},
		Exec: &ExecOp{
			Meta: &Meta{
				Args: []string{"/bin/sh", "-c", "echo hi"},
				Env:  []string{"HOME=/root"},
				Cwd:  "/",
				User: "root",
			},
			Network:  NetModeUnset,
			Security: SecurityModeSandbox,
		},
	}

	got1, err := op.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got2, err := op.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	testutil.AssertEq(t, "Marshal across calls", string(got1), string(got2))
	testutil.AssertNonEmpty(t, "Marshal output", string(got1))
}

func TestStringMapEncodingIgnoresIterationOrder(t *testing.T) {
	m1 := map[string]string{"b": "2", "a": "1", "c": "3"}
	m2 := map[string]string{"c": "3", "a": "1", "b": "2"}

	var b1, b2 []byte
	b1 = encodeStringMap(b1, 9, m1)
	b2 = encodeStringMap(b2, 9, m2)

	testutil.AssertEq(t, "encodeStringMap", string(b1), string(b2))
}

func TestBoolMapEncodingIgnoresIterationOrder(t *testing.T) {
	m1 := map[string]bool{"x": true, "y": false, "z": true}
	m2 := map[string]bool{"z": true, "x": true, "y": false}

	var b1, b2 []byte
	b1 = encodeBoolMap(b1, 3, m1)
	b2 = encodeBoolMap(b2, 3, m2)

	testutil.AssertEq(t, "encodeBoolMap", string(b1), string(b2))
}

func TestSourceOpOmitsEmptyAttrs(t *testing.T) {
	s := &SourceOp{Identifier: "local://context"}
	got := s.Marshal()
	want := appendTagString(nil, 1, "local://context")
	testutil.AssertEq(t, "SourceOp.Marshal with no attrs", string(got), string(want))
}

func TestDefinitionMarshalStable(t *testing.T) {
	d := &Definition{
		Def: [][]byte{[]byte("node-a"), []byte("node-b")},
		Metadata: map[string]*OpMetadata{
			"sha256:bbb": {Description: map[string]string{CustomNameKey: "b"}},
			"sha256:aaa": {Caps: map[string]bool{CapFileBase: true}},
		},
	}
	got1, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got2, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	testutil.AssertEq(t, "Definition.Marshal across calls", string(got1), string(got2))
}
