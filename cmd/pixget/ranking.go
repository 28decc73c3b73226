package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/akitsu/pixget/internal/downloader"
	"github.com/akitsu/pixget/internal/planner"
)

var rankingDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func runRanking(args []string) int {
	fs := flag.NewFlagSet("ranking", flag.ExitOnError)
	common := registerCommonFlags(fs)

	date := fs.String("date", "", "Ranking date, YYYY-MM-DD (default: today)")
	mode := fs.String("mode", "daily", "Ranking mode (daily, weekly, monthly, ...)")
	size := fs.Int("size", 0, "Number of ranked works to fetch (default: page_size)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: pixget ranking [options]

Download one day's ranked illustrations into a "<date> ranking" folder,
each file prefixed with its rank. Files already present are skipped.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *date == "" {
		*date = time.Now().Format("2006-01-02")
	}
	if !rankingDatePattern.MatchString(*date) {
		fmt.Fprintf(os.Stderr, "Error: invalid date %q, want YYYY-MM-DD\n", *date)
		return ExitInvalidArgs
	}

	cfg, err := common.loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if *size <= 0 {
		*size = cfg.PageSize
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, code := setup(ctx, cfg)
	if code != ExitSuccess {
		return code
	}
	defer a.Close()

	illusts, err := a.client.ListRankingIllustrations(ctx, *date, *size, *mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: ranking %s: %v\n", *date, err)
		return apiExitCode(err)
	}

	opts := a.downloadOptions()
	opts.Layout = planner.Layout{
		BasePrefix:    *date + " ranking",
		AddRankPrefix: true,
	}
	if err := downloader.Download(ctx, a.bucket, illusts, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: ranking %s: %v\n", *date, err)
		return ExitGeneralError
	}

	return ExitSuccess
}
