package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/dgallion1/docx2md/internal/config"
	"github.com/dgallion1/docx2md/internal/convert"
	"github.com/dgallion1/docx2md/internal/output"
	"github.com/dgallion1/docx2md/internal/parser"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "docx2md: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("docx2md", flag.ContinueOnError)
	fs.SetOutput(stderr)

	frontmatter := fs.Bool("frontmatter", false, "Emit YAML frontmatter with title and prev/next navigation")
	split := fs.Bool("split", false, "Write one Markdown file per chapter")
	extended := fs.Bool("extended", false, "Use extended code fence syntax (language plus title)")
	fix := fs.Bool("fix", false, "Run the Markdown post-pass (lists, captions, heading numbers)")
	outPath := fs.String("out", "", "Output file, or directory in split mode (default: stdout / current directory)")
	rulesPath := fs.String("config", os.Getenv("DOCX2MD_RULES"), "YAML rules file")
	concurrency := fs.Int("j", output.DefaultConcurrency, "Parallel chapter writes in split mode")
	verbose := fs.Bool("v", false, "Debug logging to stderr")
	fs.Usage = func() {
		exts := slices.Sorted(maps.Keys(parser.SupportedExtensions))
		fmt.Fprintf(fs.Output(), "Usage: docx2md [flags] SRC\n\nSupported: %s\n\nFlags:\n", strings.Join(exts, " "))
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	src := fs.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rules, err := config.LoadRules(*rulesPath)
	if err != nil {
		return err
	}
	// Flags given on the command line win over the rules file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frontmatter":
			rules.Frontmatter = *frontmatter
		case "split":
			rules.Split = *split
		case "extended":
			rules.Extended = *extended
		case "fix":
			rules.Fixup = *fix
		}
	})

	conv, err := convert.New(convert.Options{
		Rules:                rules,
		PDFFallbackPdftotext: true,
	}, log)
	if err != nil {
		return err
	}
	res, err := conv.ConvertFile(src)
	if err != nil {
		return err
	}

	if rules.Split {
		dir := *outPath
		if dir == "" {
			dir = "."
		}
		if err := output.WriteChapters(ctx, dir, res.Chapters, *concurrency, log); err != nil {
			return err
		}
		log.Info("wrote chapters", "dir", dir, "count", len(res.Chapters))
		return nil
	}

	if *outPath == "" {
		_, err := io.WriteString(stdout, res.Markdown)
		return err
	}
	path := *outPath
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, parser.Title(src)+".md")
	}
	if err := output.WriteFile(path, res.Markdown); err != nil {
		return err
	}
	log.Info("wrote document", "path", path)
	return nil
}
