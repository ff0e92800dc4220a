package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"sort"
	"strings"
	"time"

	hkv "github.com/hidal-go/hidalgo/kv"
	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/config"
	"github.com/cayleygraph/lpgrdf/graph/kv"
	"github.com/cayleygraph/lpgrdf/loader"
	"github.com/cayleygraph/lpgrdf/schema"
)

const (
	flagLoad       = "load"
	flagLoadFormat = "load_format"
	flagDump       = "dump"
	flagDumpFormat = "dump_format"
)

func registerLoadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagLoad, "i", "", `quad file to load after opening the database (".gz" supported, "-" for stdin)`)
	var names []string
	for _, f := range quad.Formats() {
		if f.Reader != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	cmd.Flags().String(flagLoadFormat, "", `quad file format to use for loading instead of auto-detection ("`+strings.Join(names, `", "`)+`")`)
}

func registerDumpFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagDump, "o", "", `quad file to dump the database to (".gz" supported, "-" for stdout)`)
	var names []string
	for _, f := range quad.Formats() {
		if f.Writer != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	cmd.Flags().String(flagDumpFormat, "", `quad file format to use instead of auto-detection ("`+strings.Join(names, `", "`)+`")`)
}

func getContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
		case <-ctx.Done():
		}
		signal.Stop(ch)
		cancel()
	}()
	return ctx, cancel
}

func printBackendInfo() {
	name := viper.GetString(config.KeyBackend)
	path := viper.GetString(config.KeyPath)
	if path != "" {
		path = " (" + path + ")"
	}
	clog.Infof("using backend %q%s", name, path)
}

// handle is an engine together with the store it is saved to.
type handle struct {
	e          *lpgrdf.Engine
	db         hkv.KV
	cfg        *config.Config
	schema     schema.ID
	persistent bool
}

// Save writes the engine to persistent stores.
func (h *handle) Save(ctx context.Context) error {
	if !h.persistent {
		return nil
	}
	start := time.Now()
	if err := kv.Save(ctx, h.db, h.e); err != nil {
		return err
	}
	clog.Infof("saved database in %v", time.Since(start))
	return nil
}

func (h *handle) Close() error {
	return h.db.Close()
}

func (h *handle) loadOptions(cmd *cobra.Command) loader.Options {
	opts := loader.Options{
		Format: h.cfg.Import.Format,
		Schema: h.schema,
		Batch:  h.cfg.Import.Batch,
	}
	if typ, _ := cmd.Flags().GetString(flagLoadFormat); typ != "" {
		opts.Format = typ
	}
	return opts
}

func loadMappings(e *lpgrdf.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	ids, err := e.Schemas().LoadYAML(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	clog.Infof("loaded %d schemas from %q", len(ids), path)
	return nil
}

// openDatabase builds an engine from the configuration and restores what
// was saved to a persistent store.
func openDatabase(ctx context.Context) (*handle, error) {
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	db, err := kv.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	h := &handle{
		e:          lpgrdf.New(opts, nil),
		db:         db,
		cfg:        cfg,
		persistent: kv.IsPersistent(cfg.Store.Backend),
	}
	if err = h.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *handle) init(ctx context.Context) error {
	if h.persistent {
		err := kv.Load(ctx, h.db, h.e)
		if err == kv.ErrNotInitialized {
			clog.Infof("database is empty")
		} else if err != nil {
			return err
		}
	}
	if h.cfg.Import.CommonSchemas {
		if err := h.e.Schemas().AddCommonSchemas(h.e.Namespaces()); err != nil {
			return err
		}
	}
	for _, path := range h.cfg.Import.Mappings {
		if err := loadMappings(h.e, path); err != nil {
			return err
		}
	}
	if name := h.cfg.Import.Schema; name != "" {
		id, ok := h.e.Schemas().SchemaByName(name)
		if !ok {
			return fmt.Errorf("%w: %q", schema.ErrUnknownSchema, name)
		}
		if err := h.e.SetActiveSchema(id); err != nil {
			return err
		}
		h.schema = id
	}
	return nil
}

// openForQueries opens the database and imports the file given by the load
// flag, if any.
func openForQueries(ctx context.Context, cmd *cobra.Command) (*handle, error) {
	h, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	if load, _ := cmd.Flags().GetString(flagLoad); load != "" {
		start := time.Now()
		st, err := loader.LoadPath(ctx, h.e, load, h.loadOptions(cmd))
		if err != nil {
			h.Close()
			return nil, err
		}
		clog.Infof("loaded %q in %v: %d triples", load, time.Since(start), st.Triples)
	}
	return h, nil
}

func printImportStats(st lpgrdf.ImportStats) {
	fmt.Printf("%d triples imported, %d duplicates, %d filtered\n", st.Triples, st.Duplicates, st.Filtered)
	fmt.Printf("%d nodes and %d relationships created, %d hierarchy edges\n", st.Nodes, st.Relationships, st.Edges)
}

func newLoadCmd(use, short string, hierarchy bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)
			load, _ := cmd.Flags().GetString(flagLoad)
			if load == "" && len(args) == 1 {
				load = args[0]
			}
			if load == "" {
				return errors.New("one quads file must be specified")
			}
			ctx, cancel := getContext()
			defer cancel()

			h, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer h.Close()

			opts := h.loadOptions(cmd)
			opts.Hierarchy = hierarchy
			st, err := loader.LoadPath(ctx, h.e, load, opts)
			if err != nil {
				return err
			}
			printImportStats(st)
			if err = h.Save(ctx); err != nil {
				return err
			}
			if dump, _ := cmd.Flags().GetString(flagDump); dump != "" {
				typ, _ := cmd.Flags().GetString(flagDumpFormat)
				if err = dumpDatabase(h, dump, typ); err != nil {
					return err
				}
			}
			return nil
		},
	}
	registerLoadFlags(cmd)
	registerDumpFlags(cmd)
	return cmd
}

func NewImportCmd() *cobra.Command {
	cmd := newLoadCmd("import", "Import an RDF file and map it to the property graph.", false)
	cmd.Flags().String("schema", "", "name of the schema used to map terms")
	cmd.Flags().Int("batch", loader.DefaultBatch, "number of triples imported at once")
	viper.BindPFlag(config.KeySchema, cmd.Flags().Lookup("schema"))
	viper.BindPFlag(config.KeyBatch, cmd.Flags().Lookup("batch"))
	return cmd
}

func NewHierarchyCmd() *cobra.Command {
	return newLoadCmd("hierarchy", "Add subclass and subproperty statements of an ontology file.", true)
}

func NewClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all triples, nodes and relationships. Schemas are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			ctx, cancel := getContext()
			defer cancel()
			h, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer h.Close()
			h.e.Clear()
			return h.Save(ctx)
		},
	}
}

type profileData struct {
	cpuProfile *os.File
	memPath    string
}

func mustSetupProfile(cmd *cobra.Command) profileData {
	p := profileData{}
	if mpp := cmd.Flag("memprofile"); mpp != nil {
		p.memPath = mpp.Value.String()
	}
	cpp := cmd.Flag("cpuprofile")
	if cpp == nil {
		return p
	}
	v := cpp.Value.String()
	if v != "" {
		f, err := os.Create(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open CPU profile file %s\n", v)
			os.Exit(1)
		}
		p.cpuProfile = f
		pprof.StartCPUProfile(f)
	}
	return p
}

func mustFinishProfile(p profileData) {
	if p.cpuProfile != nil {
		pprof.StopCPUProfile()
		p.cpuProfile.Close()
	}
	if p.memPath != "" {
		f, err := os.Create(p.memPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open memory profile file %s\n", p.memPath)
			os.Exit(1)
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile file %s\n", p.memPath)
		}
		f.Close()
	}
}
