// Copyright 2026 The Cayley Authors. All rights reserved.
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

package lpgrdf

import (
	"fmt"
	"strings"
)

// VocabURIs controls how unmapped vocabulary terms are named.
type VocabURIs int

const (
	// IgnoreVocabURIs names a term by its local name.
	IgnoreVocabURIs = VocabURIs(iota)
	// ShortenVocabURIs names a term prefix__local, registering a prefix for
	// unknown namespaces.
	ShortenVocabURIs
	// KeepVocabURIs names a term by its full IRI.
	KeepVocabURIs
)

// Multival controls how repeated values of a property are stored.
type Multival int

const (
	// Overwrite keeps the last value.
	Overwrite = Multival(iota)
	// Array collects distinct values into an array.
	Array
)

// RDFTypes controls how rdf:type statements are imported.
type RDFTypes int

const (
	// TypesAsLabels turns types into node labels.
	TypesAsLabels = RDFTypes(iota)
	// TypesAsNodes links nodes to class nodes with a type relationship.
	TypesAsNodes
	// TypesAsLabelsAndNodes does both.
	TypesAsLabelsAndNodes
)

var (
	vocabNames    = []string{"IGNORE", "SHORTEN", "KEEP"}
	multivalNames = []string{"OVERWRITE", "ARRAY"}
	typesNames    = []string{"LABELS", "NODES", "LABELS_AND_NODES"}
)

func enumString(names []string, v int) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%d", v)
}

func enumParse(names []string, what, s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q, expected one of %s", what, s, strings.Join(names, ", "))
}

func (v VocabURIs) String() string { return enumString(vocabNames, int(v)) }
func (v Multival) String() string  { return enumString(multivalNames, int(v)) }
func (v RDFTypes) String() string  { return enumString(typesNames, int(v)) }

// ParseVocabURIs parses IGNORE, SHORTEN or KEEP.
func ParseVocabURIs(s string) (VocabURIs, error) {
	v, err := enumParse(vocabNames, "vocabulary URI policy", s)
	return VocabURIs(v), err
}

// ParseMultival parses OVERWRITE or ARRAY.
func ParseMultival(s string) (Multival, error) {
	v, err := enumParse(multivalNames, "multivalue policy", s)
	return Multival(v), err
}

// ParseRDFTypes parses LABELS, NODES or LABELS_AND_NODES.
func ParseRDFTypes(s string) (RDFTypes, error) {
	v, err := enumParse(typesNames, "rdf:type policy", s)
	return RDFTypes(v), err
}

// Options controls how triples are mapped to the property graph.
type Options struct {
	VocabURIs VocabURIs
	Multival  Multival
	// MultivalProps restricts Array to these property keys. Empty means all.
	MultivalProps []string
	RDFTypes      RDFTypes

	// KeepLangTag stores language tagged strings as "value@lang".
	KeepLangTag bool
	// LanguageFilter drops language tagged strings in other languages.
	LanguageFilter string
	// KeepCustomDataTypes keeps the datatype of literals with unknown
	// datatypes. Otherwise they are stored as plain strings.
	KeepCustomDataTypes bool

	// ResourceLabel is added to every node built from a resource.
	ResourceLabel string
	// URIProperty holds the identifier of the originating resource.
	URIProperty string
	// TypeRelationship is the relationship type used by TypesAsNodes.
	TypeRelationship string
	// HierarchyRelationships also imports subclass and subproperty
	// statements as relationships.
	HierarchyRelationships bool
}

// DefaultOptions returns the default import options.
func DefaultOptions() Options {
	return Options{
		VocabURIs:        IgnoreVocabURIs,
		Multival:         Overwrite,
		RDFTypes:         TypesAsLabels,
		ResourceLabel:    "Resource",
		URIProperty:      "uri",
		TypeRelationship: "type",
	}
}

func (o Options) multival(key string) bool {
	if o.Multival != Array {
		return false
	}
	if len(o.MultivalProps) == 0 {
		return true
	}
	for _, k := range o.MultivalProps {
		if k == key {
			return true
		}
	}
	return false
}
