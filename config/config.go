// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package config reads the settings of lpgrdf tools from a configuration
// file, LPGRDF_* environment variables and command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/graph/kv/btree"
	"github.com/cayleygraph/lpgrdf/loader"
)

// EnvPrefix is the prefix of environment variables overriding settings.
// LPGRDF_STORE_BACKEND sets store.backend, for example.
const EnvPrefix = "LPGRDF"

const (
	KeyVocabURIs           = "import.vocab_uris"
	KeyMultival            = "import.multival"
	KeyMultivalProps       = "import.multival_props"
	KeyRDFTypes            = "import.rdf_types"
	KeyKeepLangTag         = "import.keep_lang_tag"
	KeyLanguage            = "import.language"
	KeyKeepCustomDataTypes = "import.keep_custom_datatypes"
	KeyResourceLabel       = "import.resource_label"
	KeyURIProperty         = "import.uri_property"
	KeyTypeRelationship    = "import.type_relationship"
	KeyHierarchyRels       = "import.hierarchy_relationships"
	KeyBatch               = "import.batch"
	KeyFormat              = "import.format"
	KeySchema              = "import.schema"
	KeyMappings            = "import.mappings"
	KeyCommonSchemas       = "import.common_schemas"

	KeyBackend = "store.backend"
	KeyPath    = "store.path"

	KeyHost     = "http.host"
	KeyReadOnly = "http.read_only"
	KeyTimeout  = "http.timeout"
)

// Import holds the settings used when mapping triples to the property graph.
type Import struct {
	VocabURIs              string   `mapstructure:"vocab_uris"`
	Multival               string   `mapstructure:"multival"`
	MultivalProps          []string `mapstructure:"multival_props"`
	RDFTypes               string   `mapstructure:"rdf_types"`
	KeepLangTag            bool     `mapstructure:"keep_lang_tag"`
	Language               string   `mapstructure:"language"`
	KeepCustomDataTypes    bool     `mapstructure:"keep_custom_datatypes"`
	ResourceLabel          string   `mapstructure:"resource_label"`
	URIProperty            string   `mapstructure:"uri_property"`
	TypeRelationship       string   `mapstructure:"type_relationship"`
	HierarchyRelationships bool     `mapstructure:"hierarchy_relationships"`
	Batch                  int      `mapstructure:"batch"`
	Format                 string   `mapstructure:"format"`
	// Schema is the name of the schema that resolves names on import.
	Schema string `mapstructure:"schema"`
	// Mappings lists schema mapping files to load.
	Mappings      []string `mapstructure:"mappings"`
	CommonSchemas bool     `mapstructure:"common_schemas"`
}

// Store selects the key-value store the engine is saved to.
type Store struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type HTTP struct {
	Host     string        `mapstructure:"host"`
	ReadOnly bool          `mapstructure:"read_only"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config defines the behavior of lpgrdf instances.
type Config struct {
	Import Import `mapstructure:"import"`
	Store  Store  `mapstructure:"store"`
	HTTP   HTTP   `mapstructure:"http"`
}

// SetDefaults registers defaults for every key. Keys without a default are
// not looked up in the environment.
func SetDefaults(v *viper.Viper) {
	def := lpgrdf.DefaultOptions()
	v.SetDefault(KeyVocabURIs, def.VocabURIs.String())
	v.SetDefault(KeyMultival, def.Multival.String())
	v.SetDefault(KeyMultivalProps, []string{})
	v.SetDefault(KeyRDFTypes, def.RDFTypes.String())
	v.SetDefault(KeyKeepLangTag, def.KeepLangTag)
	v.SetDefault(KeyLanguage, def.LanguageFilter)
	v.SetDefault(KeyKeepCustomDataTypes, def.KeepCustomDataTypes)
	v.SetDefault(KeyResourceLabel, def.ResourceLabel)
	v.SetDefault(KeyURIProperty, def.URIProperty)
	v.SetDefault(KeyTypeRelationship, def.TypeRelationship)
	v.SetDefault(KeyHierarchyRels, def.HierarchyRelationships)
	v.SetDefault(KeyBatch, loader.DefaultBatch)
	v.SetDefault(KeyFormat, "")
	v.SetDefault(KeySchema, "")
	v.SetDefault(KeyMappings, []string{})
	v.SetDefault(KeyCommonSchemas, false)

	v.SetDefault(KeyBackend, btree.Type)
	v.SetDefault(KeyPath, "")

	v.SetDefault(KeyHost, "127.0.0.1:64210")
	v.SetDefault(KeyReadOnly, false)
	v.SetDefault(KeyTimeout, 30*time.Second)
}

// Setup prepares v to read settings from the environment and, if path is
// not empty, from a configuration file of any format viper supports.
func Setup(v *viper.Viper, path string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config %q: %w", path, err)
	}
	return nil
}

// Decode reads the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads settings from the environment and an optional file.
func Load(path string) (*Config, error) {
	v := viper.New()
	if err := Setup(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Options converts the import settings to engine options.
func (c *Config) Options() (lpgrdf.Options, error) {
	return c.Import.Options()
}

func (c Import) Options() (lpgrdf.Options, error) {
	o := lpgrdf.DefaultOptions()
	var err error
	if c.VocabURIs != "" {
		if o.VocabURIs, err = lpgrdf.ParseVocabURIs(c.VocabURIs); err != nil {
			return o, err
		}
	}
	if c.Multival != "" {
		if o.Multival, err = lpgrdf.ParseMultival(c.Multival); err != nil {
			return o, err
		}
	}
	if c.RDFTypes != "" {
		if o.RDFTypes, err = lpgrdf.ParseRDFTypes(c.RDFTypes); err != nil {
			return o, err
		}
	}
	for _, p := range c.MultivalProps {
		if p = strings.TrimSpace(p); p != "" {
			o.MultivalProps = append(o.MultivalProps, p)
		}
	}
	o.KeepLangTag = c.KeepLangTag
	o.LanguageFilter = c.Language
	o.KeepCustomDataTypes = c.KeepCustomDataTypes
	if c.ResourceLabel != "" {
		o.ResourceLabel = c.ResourceLabel
	}
	if c.URIProperty != "" {
		o.URIProperty = c.URIProperty
	}
	if c.TypeRelationship != "" {
		o.TypeRelationship = c.TypeRelationship
	}
	o.HierarchyRelationships = c.HierarchyRelationships
	return o, nil
}
