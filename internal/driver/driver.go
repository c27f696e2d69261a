// Package driver implements LinkDriver: it owns every intermediate
// artifact of one link invocation and sequences the merge →
// id-assignment → reference-linking → auto-versioning →
// split-partitioning → archive-writing pipeline described by the
// component design (spec §2's data-flow line).
package driver

import (
	"fmt"
	"path/filepath"

	"github.com/ABC-KANG/abc-res-link/internal/archive"
	"github.com/ABC-KANG/abc-res-link/internal/decode"
	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/flatten"
	"github.com/ABC-KANG/abc-res-link/internal/ids"
	"github.com/ABC-KANG/abc-res-link/internal/linkref"
	"github.com/ABC-KANG/abc-res-link/internal/manifest"
	"github.com/ABC-KANG/abc-res-link/internal/merge"
	"github.com/ABC-KANG/abc-res-link/internal/privatize"
	"github.com/ABC-KANG/abc-res-link/internal/productfilter"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/sideoutput"
	"github.com/ABC-KANG/abc-res-link/internal/split"
	"github.com/ABC-KANG/abc-res-link/internal/stableids"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
	"github.com/ABC-KANG/abc-res-link/internal/version"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
	"github.com/ABC-KANG/abc-res-link/lib/fsext"
	"github.com/ABC-KANG/abc-res-link/loader"
)

// SplitSpec is one parsed `--split PATH:CFG[,CFG…]` argument.
type SplitSpec struct {
	OutPath string
	CSV     string // the CFG[,CFG…] portion, still in raw form
}

// Options collects every CLI-level decision the driver needs (spec §6).
// Flags not passed keep their Go zero value; optional scalar fields that
// must distinguish "not passed" from "passed as zero" are carried by the
// CLI layer as null.* and resolved to a plain value before Options is
// built, except where the zero value is already unambiguous (e.g. 0
// meaning "no minimum").
type Options struct {
	Manifest     string
	OutPath      string
	OutputToDir  bool
	Includes     []string
	Overlays     []string
	Positional   []string
	CustomPackage         string
	ExtraPackages         []string
	PrivateSymbolsPackage string

	StaticLib           bool
	NoStaticLibPackages bool
	AutoAddOverlay      bool
	NonFinalIDs         bool

	StableIDsPath string
	EmitIDsPath   string

	NoAutoVersion    bool
	NoVersionVectors bool
	NoXMLNamespaces  bool
	MinSDKVersion    int
	TargetSDKVersion int

	VersionCode        int64
	HasVersionCode     bool
	RevisionCode       int64
	HasRevisionCode    bool
	VersionName        string
	HasVersionName     bool

	RenameManifestPackage               string
	RenameInstrumentationTargetPackage  string

	Products []string

	PreferredDensity int // dots-per-inch, 0 disables the filter

	NoCompressExt []string
	CompressNothing bool

	Splits []SplitSpec
	ConfigFilterCSV string

	JavaOutPath      string
	ProguardPath     string
	ProguardMainDexPath string
	AddJavadocAnnotation string
}

// Driver sequences one link invocation. The compiled-unit codec is
// injected so the pipeline itself never depends on a concrete bit-level
// format (spec §1's narrow-interface seam). JavaWriter and KeepRuleWriter
// only switch the side outputs on: when one is non-nil, the driver writes
// that output with sideoutput.FileJavaWriter or sideoutput.FileKeepRuleWriter.
type Driver struct {
	FS fsext.Fs

	TableDecoder decode.CompiledTableDecoder
	XMLDecoder   decode.CompiledXMLDecoder
	XMLEncoder   decode.XMLEncoder
	TableEncoder decode.TableEncoder

	JavaWriter     sideoutput.JavaSymbolWriter
	KeepRuleWriter sideoutput.KeepRuleWriter
}

// collectionReader dispatches ReadFile across every loaded Collection
// for the run, so a FileReference minted from any one of them can be
// read back during flattening regardless of which unit produced it.
type collectionReader struct {
	collections []loader.Collection
}

func (r *collectionReader) ReadFile(h restable.FileHandle) ([]byte, error) {
	var lastErr error
	for _, c := range r.collections {
		b, err := c.ReadFile(h)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("driver: no loaded input unit serves %q: %w", h.SourcePath, lastErr)
}

// Link runs the full pipeline and writes the resulting archive (or
// archives, for --split) to disk. The returned diagnostics are every
// Diagnostic the run collected, in emission order (spec §7: "diagnostics
// are written to the standard error stream in the order produced"),
// regardless of whether the run ultimately failed; the error is non-nil
// whenever an error-severity diagnostic was emitted, and also when an
// archive write fails (such a failure may carry no diagnostic of its own).
func (d *Driver) Link(opts Options) ([]diag.Diagnostic, error) {
	sink := diag.NewSink()

	manifestDoc, err := d.XMLDecoder.DecodeXML(restable.FileHandle{SourcePath: opts.Manifest})
	if err != nil {
		sink.Error(diag.KindInputIO, diag.Source{Path: opts.Manifest}, "reading manifest: %s", err)
		return d.fail(sink)
	}

	compilationPackage := opts.CustomPackage
	if compilationPackage == "" {
		if attr := manifestDoc.Root.Find("", "package"); attr != nil {
			compilationPackage = attr.RawValue
		}
	}

	final := restable.New()
	merger := merge.NewMerger(final, sink, compilationPackage)
	merger.AutoAddOverlay = opts.AutoAddOverlay

	stack := symbols.NewStack()
	var collections []loader.Collection

	for _, path := range opts.Includes {
		col, decoded, err := d.loadTable(path)
		if err != nil {
			sink.Error(diag.KindInputIO, diag.Source{Path: path}, "%s", err)
			continue
		}
		collections = append(collections, col)
		origin := symbols.OriginPlatformInclude
		if loader.IsStaticLibrary(path) {
			origin = symbols.OriginStaticLibrary
		}
		stack.Append(symbols.NewTableSource(decoded, origin))
	}

	for _, path := range opts.Positional {
		col, decoded, err := d.loadTable(path)
		if err != nil {
			sink.Error(diag.KindInputIO, diag.Source{Path: path}, "%s", err)
			continue
		}
		collections = append(collections, col)
		if loader.IsStaticLibrary(path) && opts.NoStaticLibPackages {
			externalPkg := staticLibPackageName(decoded)
			if err := merger.MergeAndMangle(externalPkg, decoded, path); err != nil {
				continue
			}
			continue
		}
		if err := merger.Merge(decoded, path); err != nil {
			continue
		}
	}

	for _, path := range opts.Overlays {
		col, decoded, err := d.loadTable(path)
		if err != nil {
			sink.Error(diag.KindInputIO, diag.Source{Path: path}, "%s", err)
			continue
		}
		collections = append(collections, col)
		if err := merger.MergeOverlay(decoded, path); err != nil {
			continue
		}
	}

	if sink.Failed() {
		return d.fail(sink)
	}

	privatize.NewMover().Move(final)

	stack.Prepend(symbols.NewTableSource(final, symbols.OriginLocal))

	if opts.StaticLib {
		if err := ids.VerifyNoIDsSet(final, sink); err != nil {
			return d.fail(sink)
		}
	} else {
		stable := ids.StableMap{}
		if opts.StableIDsPath != "" {
			stable, err = d.loadStableIDs(opts.StableIDsPath)
			if err != nil {
				sink.Error(diag.KindInputIO, diag.Source{Path: opts.StableIDsPath}, "%s", err)
				return d.fail(sink)
			}
		}
		if err := ids.Assign(final, sink, stable); err != nil {
			return d.fail(sink)
		}
	}

	mangler := merger.Mangler
	refLinker := linkref.NewLinker(final, stack, mangler, compilationPackage, sink)
	if err := refLinker.LinkTable(); err != nil && !opts.StaticLib {
		return d.fail(sink)
	}

	if len(opts.Products) > 0 {
		productfilter.Filter(final, opts.Products)
	}

	if cfg := opts.ConfigFilterCSV; cfg != "" {
		filterByConfig(final, cfg)
	}

	if opts.PreferredDensity != 0 {
		filterByPreferredDensity(final, opts.PreferredDensity)
	}

	if !opts.NoAutoVersion && !opts.StaticLib {
		versioner := version.NewTableVersioner(stack, opts.MinSDKVersion)
		if err := versioner.Version(final, sink); err != nil {
			return d.fail(sink)
		}
	}
	if !opts.StaticLib {
		version.Collapse(final, opts.MinSDKVersion)
	}

	if opts.EmitIDsPath != "" {
		if err := d.emitStableIDs(final, opts.EmitIDsPath); err != nil {
			sink.Error(diag.KindOutputIO, diag.Source{Path: opts.EmitIDsPath}, "%s", err)
			return d.fail(sink)
		}
	}

	if d.JavaWriter != nil && (opts.JavaOutPath != "" || opts.CustomPackage != "") {
		if err := d.writeJavaSymbols(final, opts); err != nil {
			sink.Error(diag.KindOutputIO, diag.Source{Path: opts.JavaOutPath}, "%s", err)
			return d.fail(sink)
		}
	}
	if d.KeepRuleWriter != nil && opts.ProguardPath != "" {
		if err := d.writeKeepRules(final, opts.ProguardPath); err != nil {
			sink.Error(diag.KindOutputIO, diag.Source{Path: opts.ProguardPath}, "%s", err)
			return d.fail(sink)
		}
	}
	if d.KeepRuleWriter != nil && opts.ProguardMainDexPath != "" {
		if err := d.writeKeepRules(final, opts.ProguardMainDexPath); err != nil {
			sink.Error(diag.KindOutputIO, diag.Source{Path: opts.ProguardMainDexPath}, "%s", err)
			return d.fail(sink)
		}
	}

	constraints := make([]split.Constraint, len(opts.Splits))
	for i, s := range opts.Splits {
		cfg, labels := split.ParseQualifiers(s.CSV)
		constraints[i] = split.Constraint{OutPath: s.OutPath, Configs: []restable.ConfigDescription{cfg}, Labels: labels}
	}
	splitter := split.NewSplitter(constraints, opts.MinSDKVersion)
	if err := splitter.Verify(); err != nil {
		sink.Error(diag.KindSplitConstraint, diag.Source{}, "%s", err)
		return d.fail(sink)
	}
	subTables := splitter.Split(final)

	reader := &collectionReader{collections: collections}

	if opts.RenameManifestPackage != "" {
		manifest.RenamePackage(manifestDoc, opts.RenameManifestPackage)
	}
	if opts.RenameInstrumentationTargetPackage != "" {
		manifest.RenameInstrumentationTarget(manifestDoc, opts.RenameInstrumentationTargetPackage)
	}
	manifest.SetVersion(manifestDoc, manifest.Params{
		VersionCode:  opts.VersionCode,
		HasVersion:   opts.HasVersionCode,
		RevisionCode: opts.RevisionCode,
		HasRevision:  opts.HasRevisionCode,
	}, opts.VersionName, opts.HasVersionName)
	if opts.TargetSDKVersion != 0 {
		manifest.SetTargetSdkVersion(manifestDoc, opts.TargetSDKVersion)
	}

	if err := d.writePartition(opts, final, manifestDoc, opts.OutPath, reader, stack, mangler, compilationPackage, sink); err != nil {
		return d.fail(sink)
	}

	for i, sub := range subTables {
		splitManifest := manifest.Synthesize(manifest.Params{
			Package:      compilationPackage,
			VersionCode:  opts.VersionCode,
			HasVersion:   opts.HasVersionCode,
			RevisionCode: opts.RevisionCode,
			HasRevision:  opts.HasRevisionCode,
		}, constraints[i].Labels)
		if err := d.writePartition(opts, sub, splitManifest, constraints[i].OutPath, reader, stack, mangler, compilationPackage, sink); err != nil {
			return d.fail(sink)
		}
	}

	if sink.Failed() {
		return d.fail(sink)
	}
	return sink.All(), nil
}

// writePartition links the partition's manifest, flattens its file-typed
// entries, encodes its table, and writes everything to the archive at
// outPath, in the fixed relative position spec §5 requires (manifest
// first, files in sorted order, table last).
func (d *Driver) writePartition(
	opts Options, t *restable.Table, manifestDoc *xmlres.Document, outPath string,
	reader flatten.RawFileReader,
	stack *symbols.Stack, mangler *merge.Mangler, compilationPackage string, sink *diag.Sink,
) error {
	xmlLinker := xmlres.NewLinker(stack, mangler, compilationPackage, sink)
	if _, err := xmlLinker.LinkDocument(manifestDoc, compilationPackage, restable.Source{Path: opts.Manifest}); err != nil {
		return err
	}
	if opts.NoXMLNamespaces {
		xmlres.StripNamespaces(manifestDoc)
	}
	manifestBytes, err := d.XMLEncoder.EncodeXML(manifestDoc)
	if err != nil {
		sink.Error(diag.KindOutputIO, diag.Source{Path: outPath}, "%s", err)
		return err
	}

	w, err := d.openWriter(opts, outPath)
	if err != nil {
		sink.Error(diag.KindOutputIO, diag.Source{Path: outPath}, "%s", err)
		return err
	}

	if err := w.StartEntry("AndroidManifest.xml", archive.EntryFlags{Compress: !opts.CompressNothing}); err != nil {
		return err
	}
	if err := w.WriteEntry(manifestBytes); err != nil {
		return err
	}
	if err := w.FinishEntry(); err != nil {
		return err
	}

	noCompress := make(map[string]bool, len(flatten.DefaultNoCompressExt)+len(opts.NoCompressExt))
	for ext := range flatten.DefaultNoCompressExt {
		noCompress[ext] = true
	}
	for _, ext := range opts.NoCompressExt {
		noCompress[ext] = true
	}
	flattener := &flatten.Flattener{
		XMLDecoder:      d.XMLDecoder,
		XMLEncoder:      d.XMLEncoder,
		RawReader:       reader,
		Linker:          xmlres.NewLinker(stack, mangler, compilationPackage, sink),
		StripNamespaces: opts.NoXMLNamespaces,
		CompressNothing: opts.CompressNothing,
		NoCompressExt:   noCompress,
	}
	if !opts.NoAutoVersion && !opts.StaticLib {
		flattener.Versioner = version.NewFileVersioner(opts.MinSDKVersion, opts.NoVersionVectors)
	}
	if err := flattener.Flatten(t, sink, w); err != nil {
		return err
	}

	tableBytes, err := d.TableEncoder.EncodeTable(t)
	if err != nil {
		sink.Error(diag.KindOutputIO, diag.Source{Path: outPath}, "%s", err)
		return err
	}
	tableName := "resources.arsc"
	tableFlags := archive.EntryFlags{Compress: false, Align: true}
	if opts.StaticLib {
		tableName = "resources.arsc.flat"
		tableFlags = archive.EntryFlags{Compress: false, Align: false}
	}
	if err := w.StartEntry(tableName, tableFlags); err != nil {
		return err
	}
	if err := w.WriteEntry(tableBytes); err != nil {
		return err
	}
	if err := w.FinishEntry(); err != nil {
		return err
	}
	return w.Close()
}

func (d *Driver) openWriter(opts Options, outPath string) (archive.Writer, error) {
	if opts.OutputToDir {
		return archive.NewDirWriter(d.FS, outPath), nil
	}
	f, err := d.FS.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", outPath, err)
	}
	return archive.NewZipWriter(f), nil
}

func (d *Driver) loadTable(path string) (loader.Collection, *restable.Table, error) {
	col, err := loader.Open(d.FS, path)
	if err != nil {
		return nil, nil, err
	}
	h, ok := loader.FindTableHandle(col)
	if !ok {
		return nil, nil, fmt.Errorf("no compiled table found in %q", path)
	}
	t, err := d.TableDecoder.DecodeTable(h)
	if err != nil {
		return nil, nil, err
	}
	return col, t, nil
}

func (d *Driver) loadStableIDs(path string) (ids.StableMap, error) {
	f, err := d.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return stableids.Parse(f)
}

func (d *Driver) emitStableIDs(t *restable.Table, path string) error {
	f, err := d.FS.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return stableids.Emit(t, f)
}

func (d *Driver) writeJavaSymbols(t *restable.Table, opts Options) error {
	path := opts.CustomPackage + ".R.java"
	if opts.JavaOutPath != "" {
		if err := d.FS.MkdirAll(opts.JavaOutPath, 0o755); err != nil {
			return err
		}
		path = filepath.Join(opts.JavaOutPath, "R.java")
	}
	f, err := d.FS.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := &sideoutput.FileJavaWriter{W: f}
	return w.WriteJavaSymbols(t, opts.CustomPackage, opts.ExtraPackages, opts.PrivateSymbolsPackage, opts.AddJavadocAnnotation, opts.NonFinalIDs)
}

func (d *Driver) writeKeepRules(t *restable.Table, path string) error {
	f, err := d.FS.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := &sideoutput.FileKeepRuleWriter{W: f}
	return w.WriteKeepRules(t)
}

// fail returns every diagnostic collected so far plus a summary error
// naming the last error-severity one, for a caller that only wants a
// single top-level message (the CLI layer prints the full list itself).
func (d *Driver) fail(sink *diag.Sink) ([]diag.Diagnostic, error) {
	diags := sink.All()
	last := "link failed"
	for i := len(diags) - 1; i >= 0; i-- {
		if diags[i].Severity == diag.SeverityError {
			last = fmt.Sprintf("link failed: %s", diags[i].String())
			break
		}
	}
	return diags, fmt.Errorf("%s", last)
}

// staticLibPackageName returns the name of the (sole, non-android) package
// a decoded static library table declares, the mangle target for
// --no-static-lib-packages.
func staticLibPackageName(t *restable.Table) string {
	for _, pkg := range t.Packages {
		if pkg.Name != "" && pkg.Name != "android" {
			return pkg.Name
		}
	}
	return ""
}

// filterByConfig implements the `-c CFG[,CFG…]` configuration filter:
// entries keep only the ConfigValues whose rendered qualifier string is
// "default" or has at least one dash-separated part in the requested set.
func filterByConfig(t *restable.Table, csv string) {
	_, labels := split.ParseQualifiers(csv)
	wanted := map[string]bool{}
	for _, l := range labels {
		wanted[l] = true
	}
	t.Walk(func(_ *restable.Package, _ *restable.Type, e *restable.Entry) {
		var kept []restable.ConfigValue
		for _, cv := range e.Values {
			rendered := cv.Config.String()
			if rendered == "default" {
				kept = append(kept, cv)
				continue
			}
			matched := false
			for _, part := range splitDash(rendered) {
				if wanted[part] {
					matched = true
					break
				}
			}
			if matched {
				kept = append(kept, cv)
			}
		}
		e.Values = kept
	})
}

func splitDash(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// filterByPreferredDensity implements --preferred-density: for every
// entry carrying more than one density-qualified value, keep only the
// density-agnostic values plus the single best match for preferred
// (the lowest density at or above preferred, falling back to the
// highest density below it when none qualifies).
func filterByPreferredDensity(t *restable.Table, preferred int) {
	t.Walk(func(_ *restable.Package, _ *restable.Type, e *restable.Entry) {
		var agnostic []restable.ConfigValue
		densities := map[int]restable.ConfigValue{}
		for _, cv := range e.Values {
			if cv.Config.Density == 0 {
				agnostic = append(agnostic, cv)
				continue
			}
			densities[cv.Config.Density] = cv
		}
		if len(densities) <= 1 {
			return
		}
		best, ok := bestDensity(densities, preferred)
		kept := agnostic
		if ok {
			kept = append(kept, densities[best])
		}
		e.Values = kept
	})
}

func bestDensity(available map[int]restable.ConfigValue, preferred int) (int, bool) {
	bestAbove, haveAbove := 0, false
	bestBelow, haveBelow := 0, false
	for d := range available {
		if d >= preferred && (!haveAbove || d < bestAbove) {
			bestAbove, haveAbove = d, true
		}
		if d < preferred && (!haveBelow || d > bestBelow) {
			bestBelow, haveBelow = d, true
		}
	}
	if haveAbove {
		return bestAbove, true
	}
	if haveBelow {
		return bestBelow, true
	}
	return 0, false
}
