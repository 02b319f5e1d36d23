package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teranos/idlbind/emit"
	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/idl"
	"github.com/teranos/idlbind/model"
	"github.com/teranos/idlbind/source"
)

var (
	genConfig   string
	genOut      string
	genExt      string
	genUtils    string
	genImplDir  string
	genModules  []string
	genRelaxed  bool
	genWatch    bool
	genMaxWidth int
)

var generateCmd = &cobra.Command{
	Use:   "generate [idl files or directories...]",
	Short: "Build the type registry and emit binding files",
	Long: `Resolve the given IDL inputs into a type registry and write one
generated binding file per owned interface and dictionary, plus the shared
utility module.

Inputs may be single IDL files (taken as-is), directories (expanded to their
directly-contained *.idl files), and module contributions declared with
--module name=descriptor.json. Descriptors without an idlbind section
contribute nothing; types contributed by modules are resolvable but emitted
by the owning module's own build.

Examples:
  idlbind generate idl/ --impl impl/ --out generated/
  idlbind generate core.idl --module dom=node_modules/dom-types/package.json
  idlbind generate --config idlbind.toml --watch`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genConfig, "config", "c", "", "Config file with sources, modules, and output settings")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "generated", "Output directory")
	generateCmd.Flags().StringVar(&genExt, "ext", emit.DefaultExt, "Generated file extension")
	generateCmd.Flags().StringVar(&genUtils, "utils", "", "Path of the shared utility module (default <out>/utils<ext>)")
	generateCmd.Flags().StringVar(&genImplDir, "impl", "", "Implementation directory for positional inputs (default: the input's own directory)")
	generateCmd.Flags().StringSliceVar(&genModules, "module", nil, "Module contribution as name=descriptor-path (repeatable)")
	generateCmd.Flags().BoolVar(&genRelaxed, "relaxed", false, "Drop unresolvable partials, mixins, and unsupported declarations instead of failing")
	generateCmd.Flags().BoolVarP(&genWatch, "watch", "w", false, "Rebuild whenever IDL sources or descriptors change")
	generateCmd.Flags().IntVar(&genMaxWidth, "max-width", emit.DefaultMaxWidth, "Formatter line-width budget")
}

// buildSpec is one build invocation's worth of resolved configuration.
type buildSpec struct {
	Sources []source.Declaration
	Modules []source.ModuleContribution
	Out     string
	Ext     string
	Utils   string
	Relaxed bool
	Width   int
}

func runGenerate(cmd *cobra.Command, args []string) error {
	spec, err := resolveSpec(args)
	if err != nil {
		return err
	}
	if len(spec.Sources) == 0 && len(spec.Modules) == 0 {
		return errors.New("no inputs: pass IDL files/directories, --module flags, or a --config file")
	}

	ctx := cmd.Context()
	if err := runBuild(ctx, spec); err != nil {
		return err
	}

	if !genWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watchAndRebuild(ctx, spec)
}

// resolveSpec merges the optional config file with flags and positional
// arguments. Flags win over the config file; positional inputs append.
func resolveSpec(args []string) (buildSpec, error) {
	spec := buildSpec{
		Out:     genOut,
		Ext:     genExt,
		Utils:   genUtils,
		Relaxed: genRelaxed,
		Width:   genMaxWidth,
	}

	if genConfig != "" {
		if err := applyConfigFile(&spec); err != nil {
			return buildSpec{}, err
		}
	}

	for _, arg := range args {
		implDir := genImplDir
		if implDir == "" {
			implDir = implDirFor(arg)
		}
		spec.Sources = append(spec.Sources, source.Declaration{IDLPath: arg, ImplDir: implDir})
	}

	for _, mod := range genModules {
		name, descriptor, ok := strings.Cut(mod, "=")
		if !ok {
			return buildSpec{}, errors.NewInvalidInputError("--module wants name=descriptor-path, got %q", mod)
		}
		spec.Modules = append(spec.Modules, source.ModuleContribution{Name: name, DescriptorPath: descriptor})
	}

	return spec, nil
}

func applyConfigFile(spec *buildSpec) error {
	v := viper.New()
	v.SetConfigFile(genConfig)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %q", genConfig)
	}

	if v.IsSet("out") {
		spec.Out = v.GetString("out")
	}
	if v.IsSet("ext") {
		spec.Ext = v.GetString("ext")
	}
	if v.IsSet("utils") {
		spec.Utils = v.GetString("utils")
	}
	if v.IsSet("relaxed") {
		spec.Relaxed = v.GetBool("relaxed")
	}
	if v.IsSet("max_width") {
		spec.Width = v.GetInt("max_width")
	}

	var sources []struct {
		IDL  string `mapstructure:"idl"`
		Impl string `mapstructure:"impl"`
	}
	if err := v.UnmarshalKey("sources", &sources); err != nil {
		return errors.Wrapf(err, "invalid sources in %q", genConfig)
	}
	for _, s := range sources {
		impl := s.Impl
		if impl == "" {
			impl = implDirFor(s.IDL)
		}
		spec.Sources = append(spec.Sources, source.Declaration{IDLPath: s.IDL, ImplDir: impl})
	}

	var modules []struct {
		Name       string `mapstructure:"name"`
		Descriptor string `mapstructure:"descriptor"`
	}
	if err := v.UnmarshalKey("modules", &modules); err != nil {
		return errors.Wrapf(err, "invalid modules in %q", genConfig)
	}
	for _, m := range modules {
		spec.Modules = append(spec.Modules, source.ModuleContribution{Name: m.Name, DescriptorPath: m.Descriptor})
	}

	return nil
}

// runBuild executes one full pipeline pass: collect, load, resolve, emit.
func runBuild(ctx context.Context, spec buildSpec) error {
	collector := source.NewCollector()
	for _, decl := range spec.Sources {
		if err := collector.AddSource(decl); err != nil {
			return err
		}
	}
	for _, mod := range spec.Modules {
		if err := collector.AddModule(mod); err != nil {
			return err
		}
	}

	entries, err := collector.Collect(ctx)
	if err != nil {
		return err
	}

	docs, err := source.LoadDocuments(ctx, entries)
	if err != nil {
		return err
	}

	reg, err := model.NewBuilder(idl.NewParser(), model.Options{Relaxed: spec.Relaxed}).BuildRegistry(docs)
	if err != nil {
		return err
	}

	driver, err := emit.NewDriver(emit.Options{
		OutputDir: spec.Out,
		Ext:       spec.Ext,
		UtilsPath: spec.Utils,
		MaxWidth:  spec.Width,
	})
	if err != nil {
		return err
	}
	if err := driver.Emit(ctx, reg); err != nil {
		return err
	}

	fmt.Printf("✓ Generated bindings for %d types in %s\n", countOwned(reg), spec.Out)
	return nil
}
