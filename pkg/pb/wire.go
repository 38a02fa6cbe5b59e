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

// Package pb is the wire-format contract for LLB graph nodes: the opaque,
// protobuf-shaped byte layout that a BuildKit daemon consumes. Nothing here
// is generated by protoc; the message shapes are hand-written and encoded
// deterministically with the low-level primitives from
// google.golang.org/protobuf/encoding/protowire, which is the same varint
// and tag machinery the official generated code builds on. Field numbers
// and wire types are fixed per type and never depend on map iteration,
// pointer identity, or allocation order.
package pb

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendTagVarint(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendTagBool(b []byte, num protowire.Number, v bool) []byte {
	var i int64
	if v {
		i = 1
	}
	return appendTagVarint(b, num, i)
}

func appendTagString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendTagBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendTagMessage appends a length-delimited embedded message. The caller
// supplies the already-encoded message body.
func appendTagMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// appendStringMapEntry encodes one map<string,string> entry: key is field 1,
// value is field 2 of the implicit MapEntry message.
func appendStringMapEntry(key, value string) []byte {
	var entry []byte
	entry = appendTagString(entry, 1, key)
	entry = appendTagString(entry, 2, value)
	return entry
}

// appendBoolMapEntry encodes one map<string,bool> entry.
func appendBoolMapEntry(key string, value bool) []byte {
	var entry []byte
	entry = appendTagString(entry, 1, key)
	entry = appendTagBool(entry, 2, value)
	return entry
}

// encodeStringMap appends every entry of m as a repeated MapEntry field,
// sorted by key so the output never depends on Go's randomized map
// iteration order. This is the canonical-encoding requirement of the
// LLB wire contract: no map-typed field may leak iteration order into bytes.
func encodeStringMap(b []byte, num protowire.Number, m map[string]string) []byte {
	if len(m) == 0 {
		return b
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b = appendTagMessage(b, num, appendStringMapEntry(k, m[k]))
	}
	return b
}

func encodeBoolMap(b []byte, num protowire.Number, m map[string]bool) []byte {
	if len(m) == 0 {
		return b
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b = appendTagMessage(b, num, appendBoolMapEntry(k, m[k]))
	}
	return b
}
