// Command pdftext prints the text of PDF files.
//
// Usage:
//
//	pdftext [flags] file.pdf...
//
// Each content stream of each page is printed as one block. Files are
// processed concurrently and written in argument order.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/tsawler/pdftext"
	"github.com/tsawler/pdftext/font"
	"github.com/tsawler/pdftext/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type config struct {
	first, last int
	spaceWidth  float64
	form        string
	format      string
	sep         string
	jobs        int
	verbose     bool
	stopOnError bool
	files       []string
}

// result is the outcome for one input file.
type result struct {
	File   string
	Blocks []pdftext.Block
	Err    error
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "pdftext: %v\n", err)
		}
		return exitUsage
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	results := make([]result, len(cfg.files))
	var g errgroup.Group
	g.SetLimit(cfg.jobs)
	for i, file := range cfg.files {
		g.Go(func() error {
			blocks, err := extract(file, cfg, logger.With("file", file))
			results[i] = result{File: file, Blocks: blocks, Err: err}
			return nil
		})
	}
	g.Wait()

	switch cfg.format {
	case "html":
		err = writeHTML(stdout, results)
	case "json":
		err = writeJSON(stdout, results)
	default:
		err = writeText(stdout, results, header(cfg.sep, stdout))
	}
	if err != nil {
		fmt.Fprintf(stderr, "pdftext: %v\n", err)
		return exitFail
	}

	code := exitOK
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "pdftext: %s: %v\n", r.File, r.Err)
			code = exitFail
		}
	}
	return code
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("pdftext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.first, "f", 0, "first page to extract (1-based, 0 = first)")
	fs.IntVar(&cfg.last, "l", 0, "last page to extract (1-based, 0 = last)")
	fs.Float64Var(&cfg.spaceWidth, "space-width", font.DefaultSpaceWidth, "space width for fonts without width information")
	fs.StringVar(&cfg.form, "norm", "none", "unicode normalization: none, nfc or nfkc")
	fs.StringVar(&cfg.format, "format", "text", "output format: text, html or json")
	fs.StringVar(&cfg.sep, "sep", "auto", "print a header per file: auto, always or never")
	fs.IntVar(&cfg.jobs, "j", 4, "number of files processed in parallel")
	fs.BoolVar(&cfg.verbose, "v", false, "log debug records to stderr")
	fs.BoolVar(&cfg.stopOnError, "strict", false, "stop a file at its first failed stream")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pdftext [flags] file.pdf...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.files = fs.Args()

	switch {
	case len(cfg.files) == 0:
		fs.Usage()
		return cfg, errors.New("no input files")
	case cfg.first < 0 || cfg.last < 0:
		return cfg, errors.New("page numbers must not be negative")
	case cfg.last != 0 && cfg.first > cfg.last:
		return cfg, fmt.Errorf("first page %d is after last page %d", cfg.first, cfg.last)
	case cfg.spaceWidth <= 0:
		return cfg, fmt.Errorf("space width must be positive, got %g", cfg.spaceWidth)
	case cfg.jobs < 1:
		return cfg, fmt.Errorf("-j must be at least 1, got %d", cfg.jobs)
	}
	if _, ok := normForms[cfg.form]; !ok && cfg.form != "none" {
		return cfg, fmt.Errorf("unknown normalization %q", cfg.form)
	}
	switch cfg.format {
	case "text", "html", "json":
	default:
		return cfg, fmt.Errorf("unknown format %q", cfg.format)
	}
	switch cfg.sep {
	case "auto", "always", "never":
	default:
		return cfg, fmt.Errorf("unknown -sep value %q", cfg.sep)
	}
	return cfg, nil
}

var normForms = map[string]norm.Form{
	"nfc":  norm.NFC,
	"nfkc": norm.NFKC,
}

// extract returns the blocks of the configured page range of file.
func extract(file string, cfg config, logger *slog.Logger) ([]pdftext.Block, error) {
	ext := pdftext.Open(file).
		SpaceWidth(cfg.spaceWidth).
		Logger(logger).
		StopOnError(cfg.stopOnError)
	if form, ok := normForms[cfg.form]; ok {
		ext = ext.Normalize(form)
	}

	if cfg.first != 0 || cfg.last != 0 {
		count, err := ext.PageCount()
		if err != nil {
			ext.Close()
			return nil, err
		}
		first, last := max(cfg.first, 1), cfg.last
		if last == 0 || last > count {
			last = count
		}
		if first > last {
			ext.Close()
			return nil, fmt.Errorf("no pages in range %d-%d (document has %d)", cfg.first, cfg.last, count)
		}
		ext = ext.PageRange(first, last)
	}
	return ext.Blocks()
}

// header reports whether text output gets a header line per file.
func header(sep string, w io.Writer) bool {
	switch sep {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeText(w io.Writer, results []result, withHeader bool) error {
	for _, r := range results {
		if r.Err != nil && len(r.Blocks) == 0 {
			continue
		}
		if withHeader {
			if _, err := fmt.Fprintf(w, "==> %s <==\n", r.File); err != nil {
				return err
			}
		}
		for _, b := range r.Blocks {
			if _, err := fmt.Fprintln(w, b.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

type jsonBlock struct {
	Page      int            `json:"page"`
	Stream    int            `json:"stream"`
	Text      string         `json:"text"`
	Direction text.Direction `json:"direction"`
	Error     string         `json:"error,omitempty"`
}

type jsonFile struct {
	File   string      `json:"file"`
	Error  string      `json:"error,omitempty"`
	Blocks []jsonBlock `json:"blocks"`
}

func writeJSON(w io.Writer, results []result) error {
	files := make([]jsonFile, len(results))
	for i, r := range results {
		f := jsonFile{File: r.File, Blocks: []jsonBlock{}}
		if r.Err != nil {
			f.Error = r.Err.Error()
		}
		for _, b := range r.Blocks {
			jb := jsonBlock{Page: b.Page, Stream: b.Stream, Text: b.Text, Direction: b.Direction}
			if b.Err != nil {
				jb.Error = b.Err.Error()
			}
			f.Blocks = append(f.Blocks, jb)
		}
		files[i] = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}

func writeHTML(w io.Writer, results []result) error {
	body := element(atom.Body)
	for _, r := range results {
		article := element(atom.Article, html.Attribute{Key: "data-file", Val: r.File})
		heading := element(atom.H1)
		heading.AppendChild(&html.Node{Type: html.TextNode, Data: r.File})
		article.AppendChild(heading)
		if r.Err != nil {
			p := element(atom.P, html.Attribute{Key: "class", Val: "error"})
			p.AppendChild(&html.Node{Type: html.TextNode, Data: r.Err.Error()})
			article.AppendChild(p)
		}
		for _, b := range r.Blocks {
			article.AppendChild(blockSection(b))
		}
		body.AppendChild(article)
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	if err := html.Render(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func blockSection(b pdftext.Block) *html.Node {
	dir := "auto"
	switch b.Direction {
	case text.LTR:
		dir = "ltr"
	case text.RTL:
		dir = "rtl"
	}
	section := element(atom.Section,
		html.Attribute{Key: "data-page", Val: strconv.Itoa(b.Page)},
		html.Attribute{Key: "data-stream", Val: strconv.Itoa(b.Stream)},
		html.Attribute{Key: "dir", Val: dir},
	)
	pre := element(atom.Pre)
	pre.AppendChild(&html.Node{Type: html.TextNode, Data: b.Text})
	section.AppendChild(pre)
	if b.Err != nil {
		p := element(atom.P, html.Attribute{Key: "class", Val: "error"})
		p.AppendChild(&html.Node{Type: html.TextNode, Data: b.Err.Error()})
		section.AppendChild(p)
	}
	return section
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}
