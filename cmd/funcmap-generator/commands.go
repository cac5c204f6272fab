package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"funcmap-generator/internal/analyze"
	"funcmap-generator/internal/classify"
	"funcmap-generator/internal/common"
	"funcmap-generator/internal/config"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/gen"
	"funcmap-generator/internal/plan"
	"funcmap-generator/internal/typedef"
)

// commonFlags are shared by the commands that load a package.
type commonFlags struct {
	config  string
	pkg     string
	types   string
	verbose bool
	color   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "configuration file (default "+config.DefaultFile+" when present and -pkg is unset)")
	fs.StringVar(&c.pkg, "pkg", "", "package pattern, overrides the configured package")
	fs.StringVar(&c.types, "types", "", "comma-separated type names (default: configured types, or every generic type)")
	fs.BoolVar(&c.verbose, "v", false, "log debug output to stderr")
	fs.StringVar(&c.color, "color", "auto", "colorize diagnostics (auto|always|never)")
}

// session is a loaded package ready for derivation.
type session struct {
	log     *slog.Logger
	cfg     *config.File
	prog    *analyze.Program
	pkg     *analyze.Package
	deriver *plan.Deriver
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration file and applies flag overrides. It
// returns the directory package patterns are resolved in.
func loadConfig(cf *commonFlags) (*config.File, string, error) {
	path := cf.config
	if path == "" && cf.pkg == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}

	cfg := &config.File{Version: config.SupportedVersion}
	dir := ""

	if path != "" {
		var err error

		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, "", err
		}

		dir = filepath.Dir(path)
	}

	if cf.pkg != "" {
		cfg.Package = cf.pkg
		dir = ""
	}

	if cf.types != "" {
		cfg.Types = nil

		for _, name := range strings.Split(cf.types, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Types = append(cfg.Types, config.TypeConfig{Name: name})
			}
		}
	}

	if diags := config.Validate(cfg); diags.HasErrors() {
		return nil, "", diags.Err()
	}

	return cfg, dir, nil
}

func open(cf *commonFlags, log *slog.Logger) (*session, error) {
	cfg, dir, err := loadConfig(cf)
	if err != nil {
		return nil, err
	}

	loader := analyze.NewLoader()
	loader.Dir = dir
	loader.Runtime = cfg.RuntimePath()

	log.Debug("loading package", "pattern", cfg.Package, "dir", dir)

	prog, err := loader.Load(cfg.Package)
	if err != nil {
		return nil, err
	}

	for _, f := range prog.Excluded {
		log.Warn("ignoring stale generated file", "file", f)
	}

	pkg, ok := common.First(prog.Packages)
	if !ok {
		return nil, fmt.Errorf("no package matches %q", cfg.Package)
	}

	if len(prog.Packages) > 1 {
		return nil, fmt.Errorf("pattern %q matches %d packages; name exactly one", cfg.Package, len(prog.Packages))
	}

	log.Debug("loaded package", "path", pkg.Path, "dir", pkg.Dir, "discovered", prog.Registry.Len())

	if len(cfg.Types) == 0 {
		for _, name := range pkg.TypeNames() {
			cfg.Types = append(cfg.Types, config.TypeConfig{Name: name})
		}
	}

	if err := cfg.RegisterExterns(prog.Registry); err != nil {
		return nil, err
	}

	naming, err := cfg.NamingTemplates()
	if err != nil {
		return nil, err
	}

	return &session{
		log:     log,
		cfg:     cfg,
		prog:    prog,
		pkg:     pkg,
		deriver: plan.NewDeriver(prog.Registry, naming),
	}, nil
}

func (s *session) derive() (*plan.Result, error) {
	reqs, reqErr := s.cfg.Requests(s.pkg)

	res := s.deriver.DeriveAll(reqs)
	for _, m := range res.Mappings {
		s.log.Debug("derived", "func", m.FuncName, "type", m.Def.String(), "param", m.Slot.Name())
	}

	var diags diagnostic.Diagnostics
	diags.Collect(reqErr, config.CodeTypeNotFound, "", "")
	diags.Merge(res.Diagnostics)
	res.Diagnostics = diags

	return res, res.Err()
}

// report prints err, one line per diagnostic.
func report(w io.Writer, err error, color bool) {
	lines := []string{err.Error()}

	var de *diagnostic.Error
	if errors.As(err, &de) {
		lines = lines[:0]
		for _, d := range de.Diagnostics {
			lines = append(lines, d.String())
		}
	}

	for _, line := range lines {
		if color {
			line = colorize(line)
		}

		fmt.Fprintln(w, line)
	}
}

func cmdGen(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cf commonFlags
	cf.register(fs)

	out := fs.String("o", "", "output file name (default <package>_funcmap.go)")
	outDir := fs.String("d", "", "output directory (default: the package directory)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	color, err := colorEnabled(cf.color, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	s, err := open(&cf, newLogger(stderr, cf.verbose))
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	res, err := s.derive()
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	if *out != "" {
		s.cfg.Output = *out
	}

	dir := s.pkg.Dir
	if *outDir != "" {
		dir = *outDir
	}

	gcfg := gen.DefaultGeneratorConfig()
	gcfg.OutputDir = dir
	gcfg.Filename = s.cfg.Output
	gcfg.PackageNames = s.prog.PackageNames
	gcfg.RuntimePath = s.cfg.RuntimePath()

	files, err := gen.NewGenerator(gcfg).Generate(res.Mappings)
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	for i := range files {
		files[i].Dir = dir
	}

	if err := gen.WriteFiles(files, dir); err != nil {
		report(stderr, err, color)
		return 1
	}

	for _, f := range files {
		path := filepath.Join(f.Dir, f.Filename)
		s.log.Debug("wrote file", "path", path, "bytes", len(f.Content))
		fmt.Fprintln(stdout, "Generated:", path)
	}

	return 0
}

func cmdCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cf commonFlags
	cf.register(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	color, err := colorEnabled(cf.color, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	s, err := open(&cf, newLogger(stderr, cf.verbose))
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	res, err := s.derive()
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	fmt.Fprintf(stdout, "%s: %d functions\n", s.pkg.Path, len(res.Mappings))

	for _, m := range res.Mappings {
		fmt.Fprintf(stdout, "  %s\n", m.FuncName)
	}

	return 0
}

func cmdExplain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cf commonFlags
	cf.register(fs)

	typeName := fs.String("type", "", "type to explain (required)")
	param := fs.String("param", "", "parameter to explain (default: all)")
	modeName := fs.String("mode", "map", "mode to compose plans for (map|try_map)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *typeName == "" {
		fmt.Fprintln(stderr, "explain: -type is required")
		return 2
	}

	mode, err := plan.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintln(stderr, "explain:", err)
		return 2
	}

	color, err := colorEnabled(cf.color, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cf.types = *typeName

	s, err := open(&cf, newLogger(stderr, cf.verbose))
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	def, err := s.pkg.Definition(*typeName)
	if err != nil {
		report(stderr, err, color)
		return 1
	}

	req := plan.Request{Def: def, Modes: []plan.Mode{mode}}
	if *param != "" {
		req.Params = []string{*param}
	}

	// Deriving registers the type, so references to itself resolve.
	res := s.deriver.DeriveAll([]plan.Request{req})

	for _, slot := range def.Slots() {
		if *param != "" && slot.Name() != *param {
			continue
		}

		fmt.Fprintf(stdout, "%s over %s:\n", def, slot.Name())

		explainFields(stdout, s.deriver, def.Fields, slot, mode, "  ")

		for _, v := range def.Variants {
			fmt.Fprintf(stdout, "  %s:\n", v.Name)
			explainFields(stdout, s.deriver, v.Fields, slot, mode, "    ")
		}
	}

	if err := res.Err(); err != nil {
		report(stderr, err, color)
		return 1
	}

	return 0
}

func explainFields(w io.Writer, d *plan.Deriver, fields []typedef.Field, slot typedef.Slot, mode plan.Mode, indent string) {
	for _, f := range fields {
		occ := classify.Classify(f.Type, slot, d.Registry())

		fmt.Fprintf(w, "%s%s:\n", indent, f.Name)

		for _, line := range occ.Lines() {
			fmt.Fprintf(w, "%s  %s\n", indent, line)
		}

		p, err := plan.Compose(occ, mode)
		if err != nil {
			fmt.Fprintf(w, "%s  error: %v\n", indent, err)
			continue
		}

		fmt.Fprintf(w, "%s  plan: %s\n", indent, p)
	}
}

func cmdInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	pkgPattern := fs.String("pkg", "", "package pattern (required)")
	out := fs.String("o", config.DefaultFile, "configuration file to write")
	force := fs.Bool("f", false, "overwrite an existing file")
	verbose := fs.Bool("v", false, "log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *pkgPattern == "" {
		fmt.Fprintln(stderr, "init: -pkg is required")
		return 2
	}

	if _, err := os.Stat(*out); err == nil && !*force {
		fmt.Fprintf(stderr, "init: %s exists (use -f to overwrite)\n", *out)
		return 1
	}

	s, err := open(&commonFlags{pkg: *pkgPattern}, newLogger(stderr, *verbose))
	if err != nil {
		report(stderr, err, false)
		return 1
	}

	s.cfg.Package = relativePattern(*pkgPattern, filepath.Dir(*out))

	if err := config.WriteFile(s.cfg, *out); err != nil {
		report(stderr, err, false)
		return 1
	}

	fmt.Fprintln(stdout, "Wrote:", *out)

	return 0
}

// relativePattern rewrites a relative package pattern so that it resolves
// from dir, where the configuration file lives.
func relativePattern(pattern, dir string) string {
	if !strings.HasPrefix(pattern, ".") {
		return pattern
	}

	absPattern, err1 := filepath.Abs(pattern)
	absDir, err2 := filepath.Abs(dir)

	if err1 != nil || err2 != nil {
		return pattern
	}

	rel, err := filepath.Rel(absDir, absPattern)
	if err != nil {
		return pattern
	}

	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}

	return rel
}
