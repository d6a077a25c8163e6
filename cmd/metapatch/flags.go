package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertwitch/metapatch/internal/configuration"
	"github.com/spf13/pflag"
)

type cliFlags struct {
	set *pflag.FlagSet

	dir           string
	configFile    string
	preset        string
	search        string
	replace       string
	filter        string
	exclude       []string
	dryRun        bool
	skipUnchanged bool
	failFast      bool
	ui            bool
	debug         bool
	version       bool
}

func newFlagSet() *cliFlags {
	f := &cliFlags{
		set: pflag.NewFlagSet("metapatch", pflag.ContinueOnError),
	}

	f.set.StringVarP(&f.dir, "dir", "d", ".", "directory containing the files to patch")
	f.set.StringVarP(&f.configFile, "config", "c", "", "configuration file (default: <dir>/"+configuration.DefaultConfigFile+")")
	f.set.StringVarP(&f.preset, "preset", "p", "", "named substitution (metallic, usine)")
	f.set.StringVarP(&f.search, "search", "s", "", "literal string to search for")
	f.set.StringVarP(&f.replace, "replace", "r", "", "literal replacement string")
	f.set.StringVar(&f.filter, "filter", configuration.DefaultFilter, "substring a file name must contain")
	f.set.StringArrayVarP(&f.exclude, "exclude", "x", nil, "gitignore-style pattern of file names to leave alone (repeatable)")
	f.set.BoolVarP(&f.dryRun, "dry-run", "n", false, "report what would change without writing anything")
	f.set.BoolVar(&f.skipUnchanged, "skip-unchanged", false, "do not rewrite files without any occurrence")
	f.set.BoolVar(&f.failFast, "fail-fast", false, "stop at the first file that cannot be patched")
	f.set.BoolVar(&f.ui, "ui", false, "show the terminal user interface")
	f.set.BoolVar(&f.debug, "debug", false, "enable debug logging")
	f.set.BoolVar(&f.version, "version", false, "print the version and exit")

	f.set.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: metapatch [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Replaces a literal value in every Unity .meta file of a directory.\n\n")
		f.set.PrintDefaults()
	}

	return f
}

func (f *cliFlags) parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return fmt.Errorf("(flags) %w", err)
	}

	return nil
}

// parseExitCode maps a [cliFlags.parse] error to the process exit code. A
// help request is not a failure, any other flag error is a configuration
// error.
func parseExitCode(err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return 0
	}

	return 1
}

// configPath returns the configuration file to read, and whether it was
// explicitly requested (and so must exist).
func (f *cliFlags) configPath() (string, bool) {
	if f.set.Changed("config") {
		return f.configFile, true
	}

	return filepath.Join(f.dir, configuration.DefaultConfigFile), false
}

// overrides returns the command-line values that were explicitly set.
func (f *cliFlags) overrides() configuration.Overrides {
	var ovr configuration.Overrides

	if f.set.Changed("preset") {
		ovr.Preset = &f.preset
	}
	if f.set.Changed("search") {
		ovr.Search = &f.search
	}
	if f.set.Changed("replace") {
		ovr.Replace = &f.replace
	}
	if f.set.Changed("filter") {
		ovr.Filter = &f.filter
	}
	if f.set.Changed("dry-run") {
		ovr.DryRun = &f.dryRun
	}
	if f.set.Changed("skip-unchanged") {
		ovr.SkipUnchanged = &f.skipUnchanged
	}
	if f.set.Changed("fail-fast") {
		ovr.FailFast = &f.failFast
	}

	ovr.Exclude = f.exclude

	return ovr
}
