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

import "sync/atomic"

// operationID identifies one operation builder for the lifetime of a single
// serialization pass. It is a process-wide monotonically increasing
// counter (spec §3/§5) used solely to deduplicate a node reached through
// multiple paths; it is never written into the encoded bytes or exposed
// outside this package, so it has no bearing on a digest.
type operationID int64

var nextOperationID atomic.Int64

// newOperationID allocates a fresh id. Every operation constructor calls
// this exactly once, so two independently constructed builders are distinct
// nodes even when their contents are identical. This package has no clone
// operation for builders: a Go copy of a builder value keeps the original's
// id, and serialization treats the copy and the original as one node.
func newOperationID() operationID {
	return operationID(nextOperationID.Add(1))
}
