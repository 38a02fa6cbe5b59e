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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pillarhq/llb/internal/imageref"
	"github.com/pillarhq/llb/pkg/pb"
)

// sourceCommon holds the fields every source kind carries: a customizable
// display name and an ignore-cache flag (spec §4.1).
type sourceCommon struct {
	opID        operationID
	customName  string
	ignoreCache bool
}

func newSourceCommon() sourceCommon {
	return sourceCommon{opID: newOperationID()}
}

func (s *sourceCommon) id() operationID { return s.opID }

// sources have no inputs - they are the leaves of the graph.
func (s *sourceCommon) inputs() []Output { return nil }

func (s *sourceCommon) metadata() *pb.OpMetadata {
	md := &pb.OpMetadata{IgnoreCache: s.ignoreCache}
	if s.customName != "" {
		md.Description = map[string]string{pb.CustomNameKey: s.customName}
	}
	return md
}

// CustomName sets the operation's display name (metadata description entry
// llb.customname).
func (s *sourceCommon) CustomName(name string) { s.customName = name }

// IgnoreCache marks the operation as always needing to re-run.
func (s *sourceCommon) IgnoreCache() { s.ignoreCache = true }

// sourceOutput returns output 0, the only output a source operation produces.
func sourceOutput(v vertex) Output { return newOutput(v, 0) }

// --- ImageSource ---

// ImageResolveMode selects how a BuildKit worker resolves an image
// reference to a specific manifest.
type ImageResolveMode string

const (
	ResolveModeDefault ImageResolveMode = "default"
	ResolveModePull    ImageResolveMode = "pull"
	ResolveModeLocal   ImageResolveMode = "local"
)

// ImageSourceOp is a container-image source operation (spec §4.1).
type ImageSourceOp struct {
	sourceCommon
	ref         *imageref.Reference
	resolveMode ImageResolveMode
	platform    string // SPEC_FULL.md §4.1 addition, "os/arch[/variant]"
}

// Image constructs an ImageSourceOp from a reference string such as
// "alpine:3.18" or "docker.io/library/rust@sha256:...". It panics if ref
// fails to parse, mirroring the typestate philosophy of this package: a
// malformed image reference is an invariant violation (spec §7), not a
// recoverable runtime condition a caller is expected to branch on mid-graph
// construction. Use ParseImage to handle the error explicitly instead.
func Image(ref string) *ImageSourceOp {
	op, err := ParseImage(ref)
	if err != nil {
		panic(err)
	}
	return op
}

// ParseImage is the fallible form of Image.
func ParseImage(ref string) (*ImageSourceOp, error) {
	parsed, err := imageref.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse image reference %q: %v", ref, err)
	}
	return &ImageSourceOp{sourceCommon: newSourceCommon(), ref: parsed}, nil
}

// ResolveMode sets the image resolve mode attribute.
func (s *ImageSourceOp) ResolveMode(mode ImageResolveMode) *ImageSourceOp {
	s.resolveMode = mode
	return s
}

// Platform sets the optional platform attribute (SPEC_FULL.md §4.1).
func (s *ImageSourceOp) Platform(platform string) *ImageSourceOp {
	s.platform = platform
	return s
}

// Output returns the source's only output.
func (s *ImageSourceOp) Output() Output { return sourceOutput(s) }

func (s *ImageSourceOp) identifier() string {
	return "docker-image://" + s.ref.Canonical()
}

func (s *ImageSourceOp) attrs() map[string]string {
	attrs := map[string]string{}
	if s.resolveMode != "" {
		attrs["image.resolvemode"] = string(s.resolveMode)
	}
	if s.platform != "" {
		attrs["platform"] = s.platform
	}
	return attrs
}

func (s *ImageSourceOp) marshal() (*pb.Op, *pb.OpMetadata) {
	return &pb.Op{Source: &pb.SourceOp{Identifier: s.identifier(), Attrs: s.attrs()}}, s.metadata()
}

// --- GitSource ---

var gitSchemePrefixes = []string{"http://", "https://", "git://", "git@"}

// GitSourceOp is a Git repository source operation (spec §4.1).
type GitSourceOp struct {
	sourceCommon
	remote    string
	reference string
}

// Git constructs a GitSourceOp for remote, optionally checked out at ref
// (a branch, tag, or commit). Pass "" for ref to use the repository's
// default branch.
func Git(remote, ref string) *GitSourceOp {
	stripped := remote
	for _, prefix := range gitSchemePrefixes {
		if strings.HasPrefix(stripped, prefix) {
			stripped = strings.TrimPrefix(stripped, prefix)
			break
		}
	}
	return &GitSourceOp{sourceCommon: newSourceCommon(), remote: stripped, reference: ref}
}

func (s *GitSourceOp) Output() Output { return sourceOutput(s) }

func (s *GitSourceOp) identifier() string {
	id := "git://" + s.remote
	if s.reference != "" {
		id += "#" + s.reference
	}
	return id
}

func (s *GitSourceOp) marshal() (*pb.Op, *pb.OpMetadata) {
	return &pb.Op{Source: &pb.SourceOp{Identifier: s.identifier()}}, s.metadata()
}

// --- HttpSource ---

// HTTPSourceOp is an HTTP(S) download source operation (spec §4.1).
type HTTPSourceOp struct {
	sourceCommon
	url      string
	filename string
}

// HTTP constructs an HTTPSourceOp for url, unchanged in the identifier.
func HTTP(url string) *HTTPSourceOp {
	return &HTTPSourceOp{sourceCommon: newSourceCommon(), url: url}
}

// Filename sets the optional http.filename attribute.
func (s *HTTPSourceOp) Filename(name string) *HTTPSourceOp {
	s.filename = name
	return s
}

func (s *HTTPSourceOp) Output() Output { return sourceOutput(s) }

func (s *HTTPSourceOp) marshal() (*pb.Op, *pb.OpMetadata) {
	attrs := map[string]string{}
	if s.filename != "" {
		attrs["http.filename"] = s.filename
	}
	return &pb.Op{Source: &pb.SourceOp{Identifier: s.url, Attrs: attrs}}, s.metadata()
}

// --- LocalSource ---

// LocalSourceOp is a local-build-context source operation (spec §4.1).
type LocalSourceOp struct {
	sourceCommon
	name    string
	include []string
	exclude []string
}

// Local constructs a LocalSourceOp named name (a handle the frontend's
// caller resolves against a directory on the client side).
func Local(name string) *LocalSourceOp {
	return &LocalSourceOp{sourceCommon: newSourceCommon(), name: name}
}

// IncludePatterns restricts the local context to paths matching any of
// patterns.
func (s *LocalSourceOp) IncludePatterns(patterns []string) *LocalSourceOp {
	s.include = patterns
	return s
}

// ExcludePatterns removes paths matching any of patterns from the local
// context.
func (s *LocalSourceOp) ExcludePatterns(patterns []string) *LocalSourceOp {
	s.exclude = patterns
	return s
}

func (s *LocalSourceOp) Output() Output { return sourceOutput(s) }

func (s *LocalSourceOp) marshal() (*pb.Op, *pb.OpMetadata) {
	attrs := map[string]string{}
	if len(s.include) > 0 {
		if b, err := json.Marshal(s.include); err == nil {
			attrs["local.includepattern"] = string(b)
		}
	}
	if len(s.exclude) > 0 {
		if b, err := json.Marshal(s.exclude); err == nil {
			attrs["local.excludepatterns"] = string(b)
		}
	}
	return &pb.Op{Source: &pb.SourceOp{Identifier: "local://" + s.name, Attrs: attrs}}, s.metadata()
}
