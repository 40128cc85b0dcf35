// Command hac65 runs the HAC/65 inferencing disassembler over a flat
// MOS 6502 object image: load an architecture overlay, analyze the
// image into code/data segments, and print the requested report
// sections. Flag handling and command wiring are adapted from
// chriskillpack/bbc-disasm's cmd/bbcdisasm, generalized from its
// list/extract/disasm subcommands to the single-command flag set of
// the original hac65 CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"hac65/internal/hac65"
	"hac65/internal/overlay"
	"hac65/internal/report"
)

const versionText = "HAC/65 v0.5 6502 Inferencing Disassembler"

func main() {
	app := &cli.App{
		Name:      "hac65",
		Usage:     "inferencing disassembler for flat MOS 6502 object images",
		ArgsUsage: "object-file",
		Version:   versionText,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Aliases: []string{"S"}, Usage: "starting position within object"},
			&cli.StringFlag{Name: "end", Aliases: []string{"E"}, Usage: "ending position within object"},
			&cli.StringFlag{Name: "arch", Aliases: []string{"A"}, Value: overlay.DefaultArchitecture, Usage: "top architecture overlay"},
			&cli.StringFlag{Name: "origin", Aliases: []string{"o"}, Usage: "origin address"},
			&cli.BoolFlag{Name: "illuminate", Aliases: []string{"i"}, Usage: "illuminate dark code"},
			&cli.StringFlag{Name: "report", Aliases: []string{"R"}, Value: "s", Usage: "reporting options: any of s(egments) f(ingerprints) d(isassembly) o(verlays)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		exitCode := 1
		if coded, ok := err.(interface{ ExitCode() int }); ok {
			exitCode = coded.ExitCode()
		}
		if exitCode != 0 {
			fmt.Fprintln(os.Stderr, "Error:", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return hac65.NewUsageError("expected exactly one object-file argument")
	}
	objectFilename := c.Args().First()

	sections, err := report.ParseSections(c.String("report"))
	if err != nil {
		return err
	}

	var startPosition, endPosition int64 = 0, -1
	if s := c.String("start"); s != "" {
		v, ok := hac65.FlexIntToUint16(s)
		if !ok {
			return hac65.NewUsageError("-S arg contains invalid digits: %q", s)
		}
		startPosition = int64(v)
	}
	if s := c.String("end"); s != "" {
		v, ok := hac65.FlexIntToUint16(s)
		if !ok {
			return hac65.NewUsageError("-E arg contains invalid digits: %q", s)
		}
		endPosition = int64(v)
	}

	analyzer := hac65.NewAnalyzer()
	if s := c.String("origin"); s != "" {
		v, ok := hac65.FlexIntToUint16(s)
		if !ok {
			return hac65.NewUsageError("-o arg contains invalid digits: %q", s)
		}
		analyzer.DeclareOriginAddress(v)
	}
	if c.Bool("illuminate") {
		analyzer.SetIlluminatingMode()
	}

	traceRequested := false
	for _, s := range sections {
		if s == report.SectionOverlays {
			traceRequested = true
			break
		}
	}

	loader := overlay.New()
	loader.Trace = traceRequested
	if traceRequested {
		analyzer.SetTrace()
	}
	if err := loader.LoadArchitecture(c.String("arch"), analyzer); err != nil {
		return err
	}

	object, objectMd5, err := overlay.LoadObjectFile(objectFilename, startPosition, endPosition)
	if err != nil {
		return err
	}
	analyzer.SetAssembly(object)

	if err := analyzer.Analyze(); err != nil {
		return err
	}

	runTime := time.Now().UTC().Format(time.ANSIC)
	command := formatCommand(os.Args)

	reporter := report.New(analyzer, loader.Overlays())
	reporter.Report(os.Stdout, versionText, runTime, command, fmt.Sprintf("%x", objectMd5), sections)

	return nil
}

// formatCommand echoes the invoking command line into the report
// header, with argv[0] reduced to its base name the way the original
// strips everything up to the last '/'.
func formatCommand(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	parts := make([]string, len(argv))
	parts[0] = filepath.Base(argv[0])
	copy(parts[1:], argv[1:])
	return strings.Join(parts, " ")
}
