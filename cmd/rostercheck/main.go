// Command rostercheck analyses a roster snapshot file offline and prints
// conflicts, compliance violations, workload balance and, on request,
// ranked candidates for open shifts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/arnavshah/roster-compliance-go/pkg/config"
	"github.com/arnavshah/roster-compliance-go/pkg/models"
	"github.com/arnavshah/roster-compliance-go/pkg/report"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
)

type options struct {
	snapshot   string
	restaurant string
	date       string
	suggest    bool
	scoring    string
	xlsx       string
	strict     bool
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.snapshot, "snapshot", "", "path to a JSON roster snapshot (required)")
	flag.StringVar(&opts.restaurant, "restaurant", "", "restaurant to analyse (defaults to the snapshot's)")
	flag.StringVar(&opts.date, "date", "", "date to analyse, YYYY-MM-DD (required)")
	flag.BoolVar(&opts.suggest, "suggest", false, "also rank candidates for open shifts")
	flag.StringVar(&opts.scoring, "scoring", "", "YAML file overriding scoring weights")
	flag.StringVar(&opts.xlsx, "xlsx", "", "write the analysis workbook to this path")
	flag.BoolVar(&opts.strict, "strict", false, "exit 2 when conflicts or violations are found")
	flag.BoolVar(&opts.verbose, "v", false, "log store activity to stderr")
	flag.Parse()

	code, err := run(context.Background(), opts, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
	os.Exit(code)
}

func run(ctx context.Context, opts options, out io.Writer) (int, error) {
	if opts.snapshot == "" || opts.date == "" {
		return 0, fmt.Errorf("-snapshot and -date are required")
	}
	date, err := models.ParseDate(opts.date)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(opts.snapshot)
	if err != nil {
		return 0, err
	}
	snap, err := scheduling.DecodeSnapshot(f)
	f.Close()
	if err != nil {
		return 0, err
	}
	restaurant := opts.restaurant
	if restaurant == "" {
		restaurant = snap.RestaurantID
	}

	lg := log.New(io.Discard, "", 0)
	if opts.verbose {
		lg = log.New(os.Stderr, "rostercheck ", log.LstdFlags)
	}
	snapStore := scheduling.NewSnapshotStore(snap)
	facade := scheduling.NewFacade(snapStore, snapStore, lg)
	if opts.scoring != "" {
		w, err := config.LoadScoringWeights(opts.scoring)
		if err != nil {
			return 0, err
		}
		facade.Weights = w
	}

	analysis, err := facade.AnalyzeSchedule(ctx, restaurant, date)
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(out, renderAnalysis(analysis))

	if opts.suggest {
		set, err := facade.SuggestOpenAssignments(ctx, restaurant, date)
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(out, renderSuggestions(set))
	}

	if opts.xlsx != "" {
		wb, err := os.Create(opts.xlsx)
		if err != nil {
			return 0, err
		}
		if err := report.WriteAnalysis(wb, analysis); err != nil {
			wb.Close()
			return 0, err
		}
		if err := wb.Close(); err != nil {
			return 0, err
		}
		fmt.Fprintln(out, dimStyle.Render("workbook written to "+opts.xlsx))
	}

	if opts.strict && (len(analysis.Conflicts) > 0 || len(analysis.Violations) > 0) {
		return 2, nil
	}
	return 0, nil
}
