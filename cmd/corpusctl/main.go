// Command corpusctl validates a result corpus and runs questions against it
// without the HTTP server or a narration provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Ayash-Bera/vbm-explorer/internal/corpus"
	"github.com/Ayash-Bera/vbm-explorer/internal/interpreter"
	"github.com/Ayash-Bera/vbm-explorer/internal/matcher"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/presenter"
	"github.com/Ayash-Bera/vbm-explorer/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	corpusSource = flag.String("corpus", "", "Corpus file or URL (default: CORPUS_SOURCE or data/results.json)")
	query        = flag.String("query", "", "Question to interpret and match")
	markdown     = flag.Bool("markdown", false, "Render tables as Markdown")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	logger := utils.GetLogger()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	source := *corpusSource
	if source == "" {
		source = os.Getenv("CORPUS_SOURCE")
	}
	if source == "" {
		source = "data/results.json"
	}

	c, err := corpus.Load(context.Background(), source, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corpus invalid: %v\n", err)
		os.Exit(1)
	}

	mode := presenter.ASCII
	if *markdown {
		mode = presenter.Markdown
	}

	printStats(os.Stdout, c, mode)
	if *query != "" {
		fmt.Println()
		printAnswer(os.Stdout, c, *query, mode)
	}
}

func printStats(w io.Writer, c *corpus.Corpus, mode presenter.TextMode) {
	meta := c.Metadata()
	fmt.Fprintf(w, "%s analyses, generated %s\n", humanize.Comma(int64(c.Len())), meta.GeneratedDate)
	for _, d := range c.Duplicates() {
		fmt.Fprintf(w, "duplicate key: %s dropped, %s kept\n", d.Dropped, d.Kept)
	}

	stats := c.Stats()
	outcomes := make([]string, 0, len(stats))
	for o := range stats {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Outcome", "Analyses"})
	for _, o := range outcomes {
		t.AppendRow(table.Row{models.Outcome(o).Label(), humanize.Comma(int64(stats[models.Outcome(o)]))})
	}
	if mode == presenter.Markdown {
		fmt.Fprintln(w, t.RenderMarkdown())
	} else {
		fmt.Fprintln(w, t.Render())
	}
}

func printAnswer(w io.Writer, c *corpus.Corpus, question string, mode presenter.TextMode) {
	in := interpreter.New(nil)
	intent := in.Interpret(question)
	result := matcher.Match(intent, c)

	fmt.Fprintf(w, "Question:   %s\n", question)
	fmt.Fprintf(w, "Rules:      %s\n", strings.Join(in.Explain(question), ", "))
	fmt.Fprintf(w, "Score:      %d (confidence %.2f)\n", result.Score, result.Confidence)

	if !result.Confident() {
		fmt.Fprintln(w, "No confident match.")
		return
	}

	rec := result.Record
	fmt.Fprintf(w, "Analysis:   %s  %s\n", rec.ID, rec.Label())
	fmt.Fprintf(w, "Estimate:   %s\n", strings.ReplaceAll(presenter.FormatCell(rec).String(), "\n", " "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, presenter.RenderText(presenter.BuildTable(c, rec), mode))
}
