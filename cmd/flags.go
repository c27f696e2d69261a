package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	null "gopkg.in/guregu/null.v3"

	"github.com/ABC-KANG/abc-res-link/internal/driver"
)

// linkFlags holds every raw flag value from spec §6's CLI surface,
// bound directly to one *pflag.FlagSet the way the teacher's
// archiveCmdFlagSet binds one struct of fields to one FlagSet. Optional
// scalars that must distinguish "not passed" from "passed as zero"
// (versionCode, revisionCode, min/target sdk) are collected as strings
// here and resolved to null.Int in toOptions, the same override-if-set
// shape the teacher's getNullInt helper gives consolidateGlobalFlags;
// preferredDensity is also a string, resolved to a plain int (0 when not
// passed) by getPreferredDensity.
type linkFlags struct {
	outPath      string
	manifest     string
	includes     []string
	overlays     []string
	javaDir      string
	proguard     string
	proguardMain string

	noAutoVersion    bool
	noVersionVectors bool
	staticLib        bool
	noStaticLibPkgs  bool
	nonFinalIDs      bool
	autoAddOverlay   bool
	outputToDir      bool
	noXMLNamespaces  bool
	verbose          bool

	stableIDs     string
	emitIDs       string
	privateSyms   string
	customPackage string
	extraPackages string
	javadocAnnot  string

	renameManifestPackage    string
	renameInstrumentTarget   string
	noCompressExt            []string
	splits                   []string
	configFilter             string
	product                  string
	versionCode              string
	revisionCode             string
	versionName              string
	preferredDensity         string
	minSDKVersion            string
	targetSDKVersion         string
	logFormat                string
}

// linkCmdFlagSet builds the *pflag.FlagSet for the root command,
// mirroring spec §6's flag table one flag per line.
func linkCmdFlagSet(f *linkFlags) *pflag.FlagSet {
	flags := pflag.NewFlagSet("link", pflag.ContinueOnError)

	flags.StringVarP(&f.outPath, "output", "o", "", "output archive path (required)")
	flags.StringVar(&f.manifest, "manifest", "", "path to the input AndroidManifest.xml (required)")
	flags.StringArrayVarP(&f.includes, "include", "I", nil, "include archive (repeatable)")
	flags.StringArrayVarP(&f.overlays, "overlay", "R", nil, "overlay compilation unit or @file (repeatable)")
	flags.StringVar(&f.javaDir, "java", "", "directory to emit R.java identifier sources into")
	flags.StringVar(&f.proguard, "proguard", "", "path to emit a proguard keep-rule file")
	flags.StringVar(&f.proguardMain, "proguard-main-dex", "", "path to emit a main-dex proguard keep-rule file")

	flags.BoolVar(&f.noAutoVersion, "no-auto-version", false, "disable automatic resource versioning")
	flags.BoolVar(&f.noVersionVectors, "no-version-vectors", false, "disable versioning of vector/animated-vector drawables")
	flags.BoolVar(&f.staticLib, "static-lib", false, "generate a static library (no final resource ids)")
	flags.BoolVar(&f.noStaticLibPkgs, "no-static-lib-packages", false, "merge static-library resources into the app package, mangling their names")
	flags.BoolVar(&f.nonFinalIDs, "non-final-ids", false, "emit non-final fields in generated R classes")
	flags.BoolVar(&f.autoAddOverlay, "auto-add-overlay", false, "allow -R overlays to declare entries not already present")
	flags.BoolVar(&f.outputToDir, "output-to-dir", false, "write the output as a plain directory tree instead of an archive")
	flags.BoolVar(&f.noXMLNamespaces, "no-xml-namespaces", false, "strip XML namespaces from every emitted document")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	flags.StringVar(&f.stableIDs, "stable-ids", "", "path to a stable-id map file to seed id assignment")
	flags.StringVar(&f.emitIDs, "emit-ids", "", "path to write the final stable-id map to")
	flags.StringVar(&f.privateSyms, "private-symbols", "", "Java package to additionally receive private (and public) R symbols; without this, the custom/extra packages receive every symbol")
	flags.StringVar(&f.customPackage, "custom-package", "", "package name of the generated R classes, overriding the manifest's")
	flags.StringVar(&f.extraPackages, "extra-packages", "", "additional PKG[:PKG…] names to also generate R classes for")
	flags.StringVar(&f.javadocAnnot, "add-javadoc-annotation", "", "annotation text embedded verbatim in generated R class doc comments")

	flags.StringVar(&f.renameManifestPackage, "rename-manifest-package", "", "rewrite the manifest's package attribute")
	flags.StringVar(&f.renameInstrumentTarget, "rename-instrumentation-target-package", "", "rewrite every <instrumentation> targetPackage attribute")
	flags.StringArrayVarP(&f.noCompressExt, "no-compress-ext", "0", nil, "suffix to store uncompressed in the output archive (repeatable)")
	flags.StringArrayVar(&f.splits, "split", nil, "PATH:CFG[,CFG…] split output (repeatable)")
	flags.StringVarP(&f.configFilter, "config-filter", "c", "", "CFG[,CFG…] configuration filter")
	flags.StringVar(&f.product, "product", "", "comma-separated list of products to keep")
	flags.StringVar(&f.versionCode, "version-code", "", "override the manifest's versionCode")
	flags.StringVar(&f.revisionCode, "revision-code", "", "override the manifest's revisionCode")
	flags.StringVar(&f.versionName, "version-name", "", "override the manifest's versionName")
	flags.StringVar(&f.preferredDensity, "preferred-density", "", "preferred output density, e.g. \"xhdpi\" or a raw dpi value")
	flags.StringVar(&f.minSDKVersion, "min-sdk-version", "", "minimum platform API level the output must run on")
	flags.StringVar(&f.targetSDKVersion, "target-sdk-version", "", "target platform API level recorded in the manifest")
	flags.StringVar(&f.logFormat, "log-format", "", "log output format: text (default) or json")

	return flags
}

// toOptions resolves the raw flag values into a driver.Options, parsing
// the optional numeric scalars through null.v3 the way the teacher's
// getNullInt/getNullBool resolve "flag not passed" vs. "passed as zero":
// only a non-empty flag string is considered "set".
func (f *linkFlags) toOptions(positional []string) (driver.Options, error) {
	opts := driver.Options{
		Manifest:            f.manifest,
		OutPath:             f.outPath,
		OutputToDir:         f.outputToDir,
		Includes:            f.includes,
		Overlays:            f.overlays,
		Positional:          positional,
		CustomPackage:       f.customPackage,
		PrivateSymbolsPackage: f.privateSyms,
		StaticLib:           f.staticLib,
		NoStaticLibPackages: f.noStaticLibPkgs,
		AutoAddOverlay:      f.autoAddOverlay,
		NonFinalIDs:         f.nonFinalIDs,
		StableIDsPath:       f.stableIDs,
		EmitIDsPath:         f.emitIDs,
		NoAutoVersion:       f.noAutoVersion,
		NoVersionVectors:    f.noVersionVectors,
		NoXMLNamespaces:     f.noXMLNamespaces,
		RenameManifestPackage:              f.renameManifestPackage,
		RenameInstrumentationTargetPackage: f.renameInstrumentTarget,
		NoCompressExt:       f.noCompressExt,
		ConfigFilterCSV:     f.configFilter,
		JavaOutPath:         f.javaDir,
		ProguardPath:        f.proguard,
		ProguardMainDexPath: f.proguardMain,
		AddJavadocAnnotation: f.javadocAnnot,
	}

	if f.manifest == "" {
		return opts, fmt.Errorf("--manifest is required")
	}
	if f.outPath == "" {
		return opts, fmt.Errorf("-o/--output is required")
	}

	if f.extraPackages != "" {
		opts.ExtraPackages = strings.Split(f.extraPackages, ":")
	}
	if f.product != "" {
		opts.Products = strings.Split(f.product, ",")
	}

	versionCode, err := getNullInt("version-code", f.versionCode)
	if err != nil {
		return opts, err
	}
	opts.VersionCode, opts.HasVersionCode = versionCode.ValueOrZero(), versionCode.Valid

	revisionCode, err := getNullInt("revision-code", f.revisionCode)
	if err != nil {
		return opts, err
	}
	opts.RevisionCode, opts.HasRevisionCode = revisionCode.ValueOrZero(), revisionCode.Valid

	if f.versionName != "" {
		opts.VersionName, opts.HasVersionName = f.versionName, true
	}

	minSDK, err := getNullInt("min-sdk-version", f.minSDKVersion)
	if err != nil {
		return opts, err
	}
	opts.MinSDKVersion = int(minSDK.ValueOrZero())

	targetSDK, err := getNullInt("target-sdk-version", f.targetSDKVersion)
	if err != nil {
		return opts, err
	}
	opts.TargetSDKVersion = int(targetSDK.ValueOrZero())

	density, err := getPreferredDensity(f.preferredDensity)
	if err != nil {
		return opts, err
	}
	opts.PreferredDensity = density

	for _, raw := range f.splits {
		spec, err := parseSplitSpec(raw)
		if err != nil {
			return opts, err
		}
		opts.Splits = append(opts.Splits, spec)
	}

	return opts, nil
}

// getNullInt parses a flag's raw string form into a null.Int: absent
// (empty string) stays invalid/zero, matching the teacher's pattern of
// treating "flag not passed" and "flag passed as 0" as distinct states.
func getNullInt(flagName, raw string) (null.Int, error) {
	if raw == "" {
		return null.NewInt(0, false), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return null.Int{}, fmt.Errorf("--%s: invalid integer %q: %w", flagName, raw, err)
	}
	return null.IntFrom(n), nil
}

// preferredDensityNames maps the named density buckets (ldpi through
// xxxhdpi, including tvdpi) to their dpi values, so --preferred-density
// accepts both "xhdpi" and a raw dpi integer. It is a separate table
// from split.go's densityNames.
var preferredDensityNames = map[string]int{
	"ldpi": 120, "mdpi": 160, "tvdpi": 213, "hdpi": 240, "xhdpi": 320,
	"xxhdpi": 480, "xxxhdpi": 640,
}

func getPreferredDensity(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	if dpi, ok := preferredDensityNames[raw]; ok {
		return dpi, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("--preferred-density: unrecognized density %q", raw)
	}
	return n, nil
}

// parseSplitSpec parses one `--split PATH:CFG[,CFG…]` argument (spec §6
// "Split parameter syntax": exactly one ':' separates the output path
// from the comma-separated qualifiers).
func parseSplitSpec(raw string) (driver.SplitSpec, error) {
	idx := strings.IndexByte(raw, ':')
	if idx < 0 {
		return driver.SplitSpec{}, fmt.Errorf("--split %q: expected PATH:CFG[,CFG…]", raw)
	}
	return driver.SplitSpec{OutPath: raw[:idx], CSV: raw[idx+1:]}, nil
}
