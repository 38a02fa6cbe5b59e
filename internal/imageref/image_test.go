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

package imageref

import (
	"fmt"
	"testing"

	"github.com/pillarhq/llb/internal/testutil"
)

func TestParseCanonical(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"rustlang/rust", "docker.io/rustlang/rust:latest"},
		{"rust", "docker.io/library/rust:latest"},
		{"localhost/rust:obj", "localhost/rust:obj"},
		{"127.0.0.1:5000/rust", "127.0.0.1:5000/rust:latest"},
		{"rust:obj@sha256:abcdef", "docker.io/library/rust:obj@sha256:abcdef"},
		{"library/alpine:latest", "docker.io/library/alpine:latest"},
	}

	for _, c := range cases {
		r, err := Parse(c.ref)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", c.ref, err)
			continue
		}
		testutil.AssertEq(t, fmt.Sprintf("Parse(%q).Canonical()", c.ref), r.Canonical(), c.want)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatalf("Parse(\"\"): expected an error")
	}
}
