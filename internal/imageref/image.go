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

// Package imageref parses and canonicalizes container image references the
// way an ImageSource source operation needs to: splitting off an optional
// digest and tag, classifying the leading path component as a registry
// domain or not, and defaulting the implicit "library/" namespace and
// "latest" tag the same way the Docker ecosystem does.
//
// The classification and defaulting rules are this package's own (they
// mirror the distilled LLB spec exactly, down to which characters make a
// leading component a domain). Once a reference has been normalized, it is
// handed to github.com/google/go-containerregistry/pkg/name for a second,
// independent syntax check; a reference this package considers canonical
// but go-containerregistry refuses to parse is treated as invalid, since a
// real BuildKit daemon builds on the same reference grammar.
package imageref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// tagPattern matches a `:tag` suffix at the very end of the name portion of
// a reference: a colon, one word character, then any number of word
// characters, dots, or dashes. Because it is anchored at the end, a colon
// followed by a "/" (a registry port such as "host:5000/name") is never
// taken as a tag.
var tagPattern = regexp.MustCompile(`:([\w][\w.-]*)$`)

// Reference is the parsed, classified form of an image reference string.
type Reference struct {
	Domain string // empty when the reference has no explicit/derived registry domain
	Name   string
	Tag    string // defaults to "latest" when rendered, but kept empty here if unset
	Digest string // everything after the first "@", empty if absent
}

// Parse implements the normalization algorithm of spec §4.1.
func Parse(ref string) (*Reference, error) {
	if ref == "" {
		return nil, fmt.Errorf("image reference must not be empty")
	}

	rest := ref
	digest := ""
	if i := strings.Index(rest, "@"); i >= 0 {
		digest = rest[i+1:]
		rest = rest[:i]
	}

	tag := ""
	if m := tagPattern.FindStringSubmatchIndex(rest); m != nil {
		tag = rest[m[2]:m[3]]
		rest = rest[:m[0]]
	}

	domain := ""
	imgName := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		first := rest[:i]
		if isDomainComponent(first) {
			if first == "docker.io" {
				domain = ""
			} else {
				domain = first
			}
			imgName = rest[i+1:]
		}
	}

	if domain == "" && !strings.Contains(imgName, "/") {
		imgName = "library/" + imgName
	}

	r := &Reference{Domain: domain, Name: imgName, Tag: tag, Digest: digest}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// isDomainComponent reports whether the first "/"-separated component of a
// reference should be treated as a registry domain, per spec §4.1: equal to
// "docker.io", equal to "localhost", containing a ".", or containing a ":".
func isDomainComponent(s string) bool {
	return s == "docker.io" || s == "localhost" || strings.Contains(s, ".") || strings.Contains(s, ":")
}

// Canonical renders the reference in the form spec §4.1 requires:
// `{domain|docker.io}/{name}:{tag|latest}[@{digest}]`.
func (r *Reference) Canonical() string {
	domain := r.Domain
	if domain == "" {
		domain = "docker.io"
	}
	tag := r.Tag
	if tag == "" {
		tag = "latest"
	}
	s := fmt.Sprintf("%s/%s:%s", domain, r.Name, tag)
	if r.Digest != "" {
		s += "@" + r.Digest
	}
	return s
}

// validate re-parses the canonical rendering with go-containerregistry as a
// second, independent check that the reference is well-formed.
func (r *Reference) validate() error {
	canonical := r.Canonical()
	withoutDigest := canonical
	if r.Digest != "" {
		withoutDigest = strings.TrimSuffix(canonical, "@"+r.Digest)
	}
	if _, err := name.ParseReference(withoutDigest, name.WeakValidation); err != nil {
		return fmt.Errorf("invalid image reference %q: %v", canonical, err)
	}
	return nil
}
