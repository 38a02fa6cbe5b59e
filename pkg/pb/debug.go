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
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// debugNode is a human-readable, JSON view of a node's metadata. It exists
// purely for logging and diffing in development; the bytes a BuildKit
// daemon consumes always come from Marshal, never from this type.
type debugNode struct {
	Description map[string]string `json:"description,omitempty"`
	Caps        map[string]bool   `json:"caps,omitempty"`
	IgnoreCache bool              `json:"ignoreCache,omitempty"`
}

// CanonicalJSON renders an OpMetadata as canonicalized JSON (RFC 8785 via
// the same jsoncanonicalizer this module's teacher used to canonicalize
// bytes before hashing them for a transparency log). It is deterministic in
// the same sense the wire encoding is: map key order never leaks through.
func (m *OpMetadata) CanonicalJSON() ([]byte, error) {
	raw, err := json.Marshal(&debugNode{
		Description: m.Description,
		Caps:        m.Caps,
		IgnoreCache: m.IgnoreCache,
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal metadata for debug rendering: %v", err)
	}
	canon, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("couldn't canonicalize metadata JSON: %v", err)
	}
	return canon, nil
}
