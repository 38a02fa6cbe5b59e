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

import "fmt"

// EnvVar is one NAME=VALUE pair passed to Command.EnvBatch. A plain map
// would let Go's randomized iteration order leak into the encoded argument
// list, so batches of environment variables are passed as an ordered slice
// instead, the same way Args is.
type EnvVar struct {
	Key   string
	Value string
}

// execMeta is the command context shared by every Command builder: name
// (argv[0]), args, environment (insertion-order preserved), working
// directory, and user (spec §3).
type execMeta struct {
	name       string
	args       []string
	env        []string // already formatted "NAME=VALUE", insertion order
	cwd        string
	user       string
	hostname   string
	extraHosts []string
}

func newExecMeta(name string) execMeta {
	return execMeta{
		name: name,
		cwd:  "/",
		user: "root",
	}
}

func (m *execMeta) setArgs(args []string) {
	m.args = append([]string(nil), args...)
}

func (m *execMeta) addEnv(key, value string) {
	m.env = append(m.env, fmt.Sprintf("%s=%s", key, value))
}

func (m *execMeta) addEnvBatch(env []EnvVar) {
	for _, kv := range env {
		m.addEnv(kv.Key, kv.Value)
	}
}

func (m *execMeta) setCwd(cwd string) {
	m.cwd = cwd
}

func (m *execMeta) setUser(user string) {
	m.user = user
}

func (m *execMeta) argv() []string {
	return append([]string{m.name}, m.args...)
}
