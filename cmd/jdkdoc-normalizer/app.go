// Copyright 2025 Ian Lewis
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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
	"sigs.k8s.io/release-utils/version"

	normalizer "github.com/ianlewis/jdkdoc-normalizer"
	"github.com/ianlewis/jdkdoc-normalizer/stylesheet"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrNormalizer is a parent error for all command errors.
var ErrNormalizer = errors.New("jdkdoc-normalizer")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrNormalizer)

var copyrightNames = []string{
	"2025 Ian Lewis",
}

//nolint:gochecknoinits // init needed needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

func newNormalizerApp() *cli.App {
	return &cli.App{
		Name:      filepath.Base(os.Args[0]),
		Usage:     "Normalize a translated Oracle JDK documentation archive.",
		ArgsUsage: "INPUT",
		Description: strings.Join([]string{
			"Normalizes a translated Oracle JDK documentation archive (ZIP) for use",
			"in the documentation viewer of an IDE.",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Usage:   "write the normalized archive to `PATH` (default: INPUT with .zip replaced by -normalized.zip)",
				Aliases: []string{"o"},
			},
			&cli.StringFlag{
				Name:  "proportional-font",
				Usage: "replace proportional fonts with `NAME` (ex: Meiryo, \"Hiragino Kaku Gothic ProN\"); the browser default font is used if empty",
			},
			&cli.StringFlag{
				Name:  "monospaced-font",
				Usage: "replace monospaced fonts with `NAME` (ex: \"DejaVu Sans Mono\", Consolas); the browser default font is used if empty",
			},
			&cli.BoolFlag{
				Name:               "summary",
				Usage:              "print a summary of processed entries to stderr",
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		Writer:          os.Stdout,
		ErrWriter:       os.Stderr,
		HideHelp:        true,
		HideHelpCommand: true,
		HideVersion:     true,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				check(cli.ShowAppHelp(c))
				return nil
			}

			if c.Bool("version") {
				return printVersion(c)
			}

			return normalize(c)
		},
	}
}

// run runs app with options allowed on either side of INPUT.
func run(app *cli.App, args []string) error {
	return app.Run(reorderArgs(app.Flags, args))
}

// reorderArgs moves positional arguments in args behind the options so that
// options given after INPUT are parsed. The program name in args[0] is kept
// and arguments after "--" are positional.
func reorderArgs(flags []cli.Flag, args []string) []string {
	if len(args) == 0 {
		return args
	}

	boolFlags := map[string]bool{}
	for _, f := range flags {
		if _, ok := f.(*cli.BoolFlag); ok {
			for _, name := range f.Names() {
				boolFlags[name] = true
			}
		}
	}

	opts := []string{args[0]}
	var positional []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--":
			positional = append(positional, rest[i+1:]...)
			i = len(rest)
		case len(arg) > 1 && arg[0] == '-':
			opts = append(opts, arg)
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") || boolFlags[name] {
				continue
			}
			// The next argument is the option's value.
			if i+1 < len(rest) {
				i++
				opts = append(opts, rest[i])
			}
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return opts
	}
	return append(append(opts, "--"), positional...)
}

func normalize(c *cli.Context) error {
	if c.NArg() != 1 {
		showUsage(c)
		return fmt.Errorf("%w: expected one INPUT argument, got %d", ErrFlagParse, c.NArg())
	}

	inPath := c.Args().First()
	f, err := os.Open(inPath)
	if err != nil {
		showUsage(c)
		return fmt.Errorf("%w: %w", ErrFlagParse, err)
	}
	_ = f.Close()

	outPath := c.String("output")
	if outPath == "" {
		outPath = normalizer.DefaultOutputPath(inPath)
	}

	opts := &normalizer.Options{
		ProportionalFont: fontOverride(c, "proportional-font"),
		MonospacedFont:   fontOverride(c, "monospaced-font"),
		Progress:         c.App.Writer,
	}

	stats, err := normalizer.NormalizeFile(inPath, outPath, opts)
	if err != nil {
		return err
	}

	if c.Bool("summary") {
		printSummary(c.App.ErrWriter, outPath, stats)
	}

	return nil
}

// fontOverride returns the font override for the named flag. A flag that was
// not given is distinct from a flag given with an empty value.
func fontOverride(c *cli.Context, name string) stylesheet.Override {
	if !c.IsSet(name) {
		return stylesheet.Override{}
	}
	return stylesheet.Replace(c.String(name))
}

// showUsage prints the help text to stderr.
func showUsage(c *cli.Context) {
	cli.HelpPrinter(c.App.ErrWriter, cli.AppHelpTemplate, c.App)
}

func printVersion(c *cli.Context) error {
	versionInfo := version.GetVersionInfo()

	out := c.App.Writer
	if _, err := fmt.Fprintf(out, "%s %s\n", c.App.Name, versionInfo.GitVersion); err != nil {
		return fmt.Errorf("%w: %w", ErrNormalizer, err)
	}
	if _, err := fmt.Fprintln(out, "Copyright (c)", c.App.Copyright); err != nil {
		return fmt.Errorf("%w: %w", ErrNormalizer, err)
	}
	return nil
}

func printSummary(w io.Writer, outPath string, stats *normalizer.Stats) {
	tbl := table.New("Entries", "Count").WithWriter(w)
	tbl.AddRow(normalizer.KindHTML, stats.HTML)
	tbl.AddRow(normalizer.KindCSS, stats.CSS)
	tbl.AddRow(normalizer.KindCopy, stats.Copied)
	tbl.AddRow("total", stats.Total())

	fmt.Fprintln(w)
	fmt.Fprintln(w, outPath)
	tbl.Print()
}

// printError prints the error to w prefixed with the program name. The
// prefix is colored if w is a terminal.
func printError(w io.Writer, name string, err error) {
	prefix := name + ":"
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		c := color.New(color.FgRed, color.Bold)
		c.EnableColor()
		prefix = c.Sprint(prefix)
	}
	fmt.Fprintln(w, prefix, err)
}
