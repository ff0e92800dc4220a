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

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/lpgrdf/clog"
	_ "github.com/cayleygraph/lpgrdf/clog/glog"
	"github.com/cayleygraph/lpgrdf/cmd/lpgrdf/command"
	"github.com/cayleygraph/lpgrdf/config"
	"github.com/cayleygraph/lpgrdf/graph/kv"
	"github.com/cayleygraph/lpgrdf/version"

	// Load all supported backends.
	_ "github.com/cayleygraph/lpgrdf/graph/kv/all"

	// Load supported quad formats.
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"
)

var (
	rootCmd = &cobra.Command{
		Use:   "lpgrdf",
		Short: "Maps RDF triples to a labeled property graph and queries it with RDFS inference.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if err := config.Setup(viper.GetViper(), path); err != nil {
				return err
			}
			if path != "" {
				clog.Infof("using config file: %s", viper.ConfigFileUsed())
			}
			return nil
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the version of lpgrdf.",
		// do not execute any persistent actions
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("lpgrdf version:", version.Version)
			fmt.Println("Git commit hash:", version.GitHash)
			if version.BuildDate != "" {
				fmt.Println("Build date:", version.BuildDate)
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(
		versionCmd,
		command.NewImportCmd(),
		command.NewHierarchyCmd(),
		command.NewClearCmd(),
		command.NewQueryCmd(),
		command.NewSchemaCommand(),
		command.NewExportCmd(),
		command.NewReplCmd(),
		command.NewHttpCmd(),
	)
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "path to an explicit configuration file")

	flags.StringP("db", "d", "", `database backend to use: `+strings.Join(kv.Backends(), ", "))
	flags.StringP("dbpath", "a", "", "path or address string for database")

	flags.String("vocab_uris", "", "naming of vocabulary terms (IGNORE, SHORTEN, KEEP)")
	flags.String("multival", "", "storage of repeated property values (OVERWRITE, ARRAY)")
	flags.StringSlice("multival_props", nil, "properties stored as arrays; all if empty")
	flags.String("types", "", "mapping of rdf:type statements (LABELS, NODES, LABELS_AND_NODES)")
	flags.Bool("keep_lang_tag", false, `store language tagged strings as "value@lang"`)
	flags.String("lang", "", "only keep literals in this language")
	flags.StringSlice("mappings", nil, "YAML files with schemas to load on start")
	flags.Bool("common_schemas", false, "register schemas for well-known vocabularies")

	flags.String("memprofile", "", "path to output memory profile")
	flags.String("cpuprofile", "", "path to output cpu profile")

	// bind flags to config variables
	viper.BindPFlag(config.KeyBackend, flags.Lookup("db"))
	viper.BindPFlag(config.KeyPath, flags.Lookup("dbpath"))
	viper.BindPFlag(config.KeyVocabURIs, flags.Lookup("vocab_uris"))
	viper.BindPFlag(config.KeyMultival, flags.Lookup("multival"))
	viper.BindPFlag(config.KeyMultivalProps, flags.Lookup("multival_props"))
	viper.BindPFlag(config.KeyRDFTypes, flags.Lookup("types"))
	viper.BindPFlag(config.KeyKeepLangTag, flags.Lookup("keep_lang_tag"))
	viper.BindPFlag(config.KeyLanguage, flags.Lookup("lang"))
	viper.BindPFlag(config.KeyMappings, flags.Lookup("mappings"))
	viper.BindPFlag(config.KeyCommonSchemas, flags.Lookup("common_schemas"))

	// make glog flags visible to cobra
	flags.AddGoFlagSet(flag.CommandLine)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
