// Package cmd implements the linker's CLI surface: a single root
// command (spec §6) that expands @file arguments, parses the flag set,
// and sequences one internal/driver.Driver.Link invocation, printing
// every diagnostic the run collected to stderr in emission order before
// choosing the process exit code.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ABC-KANG/abc-res-link/errext"
	"github.com/ABC-KANG/abc-res-link/errext/exitcodes"
	"github.com/ABC-KANG/abc-res-link/internal/decode"
	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/driver"
	"github.com/ABC-KANG/abc-res-link/internal/sideoutput"
	"github.com/ABC-KANG/abc-res-link/lib/fsext"
)

// rootCommand holds the state one invocation of the linker needs, the
// same shape the teacher's rootCommand struct gives a single run:
// a logger built once in Execute, plus the parsed flag values.
type rootCommand struct {
	logger *logrus.Logger
	flags  *linkFlags
	fs     fsext.Fs
}

func newRootCommand(logger *logrus.Logger) *rootCommand {
	return &rootCommand{logger: logger, flags: &linkFlags{}, fs: afero.NewOsFs()}
}

func (c *rootCommand) build() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "abc-res-link [flags] INPUT...",
		Short:         "Link compiled Android resources into application packages",
		Long:          "abc-res-link merges compiled resource tables and files against a manifest and include archives, assigns stable ids, links references, versions XML for multiple platform levels, and emits a base package plus any requested configuration splits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runE,
	}
	cmd.Flags().AddFlagSet(linkCmdFlagSet(c.flags))
	cmd.AddCommand(getVersionCmd())
	return cmd
}

func (c *rootCommand) runE(cmd *cobra.Command, positional []string) error {
	if err := setupLogger(c.logger, c.flags.verbose, c.flags.logFormat); err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	c.logger.WithField("inputs", len(positional)).Debug("starting link")

	opts, err := c.flags.toOptions(positional)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	d := &driver.Driver{
		FS:             c.fs,
		TableDecoder:   sharedFakeCodec,
		XMLDecoder:     sharedFakeCodec,
		XMLEncoder:     sharedFakeCodec,
		TableEncoder:   sharedFakeCodec,
		JavaWriter:     &sideoutput.FileJavaWriter{},
		KeepRuleWriter: &sideoutput.FileKeepRuleWriter{},
	}

	diags, linkErr := d.Link(opts)
	printDiagnostics(os.Stderr, diags)
	if linkErr != nil {
		return errext.WithExitCodeIfNone(linkErr, exitcodes.LinkFailed)
	}
	c.logger.Info("link succeeded")
	return nil
}

// sharedFakeCodec is the CompiledTableDecoder/CompiledXMLDecoder/
// XMLEncoder/TableEncoder the binary wires the driver to. Spec §1 puts
// the real bit-level aapt2 codec out of scope ("assumed existing and
// stable"); this repository ships only the deterministic in-memory fake
// (internal/decode.FakeCodec) behind that seam, same as its tests use -
// a production deployment swaps this for the real codec without
// touching anything in internal/driver.
var sharedFakeCodec = decode.NewFakeCodec()

// printDiagnostics writes every diagnostic to w in emission order (spec
// §7: "diagnostics are written to the standard error stream in the
// order produced"), regardless of whether the run ultimately failed.
func printDiagnostics(w *os.File, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
	}
}

// Execute is the process entry point: it expands @file arguments,
// builds and runs the root command, and maps any returned error to the
// fixed 0/1 process exit status spec §6 promises. Internal exit-code
// classification (errext.HasExitCode) is still attached to the error for
// whatever logs it, but the process itself never exposes finer codes
// than that.
func Execute() {
	logger := logrus.New()
	logger.Out = os.Stderr

	c := newRootCommand(logger)

	argv, err := expandArgs(c.fs, os.Args[1:])
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}

	root := c.build()
	root.SetArgs(argv)

	if err := root.Execute(); err != nil {
		msg, fields := errext.Format(err)
		logger.WithFields(fields).Error(msg)
		os.Exit(1)
	}
}
