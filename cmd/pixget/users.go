package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/akitsu/pixget/internal/downloader"
	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/planner"
)

func runUsers(args []string) int {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	common := registerCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: pixget users [options] <user-id>...

Download every illustration of the given pixiv users into per-user
folders named "<id> <name>". Files already present are skipped.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	ids := fs.Args()
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one user ID is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	for _, id := range ids {
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid user ID %q\n", id)
			return ExitInvalidArgs
		}
	}

	cfg, err := common.loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, code := setup(ctx, cfg)
	if code != ExitSuccess {
		return code
	}
	defer a.Close()

	for _, id := range ids {
		illusts, err := fetchAllUserWorks(ctx, a.client, id, cfg.PageSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: user %s: %v\n", id, err)
			return apiExitCode(err)
		}

		opts := a.downloadOptions()
		opts.Layout = planner.Layout{AddUserFolder: true}
		if err := downloader.Download(ctx, a.bucket, illusts, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: user %s: %v\n", id, err)
			return ExitGeneralError
		}
	}

	return ExitSuccess
}

// fetchAllUserWorks pages through a user's works until a short page marks
// the end.
func fetchAllUserWorks(ctx context.Context, client *pixiv.Client, userID string, pageSize int) ([]*pixiv.Illustration, error) {
	var all []*pixiv.Illustration
	for page := 1; ; page++ {
		illusts, err := client.ListUserIllustrations(ctx, userID, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, illusts...)
		if len(illusts) < pageSize {
			return all, nil
		}
	}
}
