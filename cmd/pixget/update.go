package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"gocloud.dev/blob"

	"github.com/akitsu/pixget/internal/downloader"
	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/planner"
)

// fastPageSize keeps fast-mode pages small so the stop condition triggers
// after little wasted listing.
const fastPageSize = 20

func runUpdate(args []string) int {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	common := registerCommonFlags(fs)

	fast := fs.Bool("fast", true, "Stop paging a user once an already-stored work is reached")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: pixget update [options]

Rescan every "<id> <name>" user folder in storage and download works
published since the last run. With -fast (the default), paging through a
user's works stops at the first page whose oldest work is already stored;
-fast=false fetches the complete work list every time.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
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

	users, err := listUserFolders(ctx, a.bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	if len(users) == 0 {
		fmt.Fprintln(os.Stderr, "[pixget] No user folders found, nothing to update")
		return ExitSuccess
	}

	for _, u := range users {
		var illusts []*pixiv.Illustration
		if *fast {
			illusts, err = fetchNewUserWorks(ctx, a.client, a.bucket, u)
		} else {
			illusts, err = fetchAllUserWorks(ctx, a.client, u.id, cfg.PageSize)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: user %s: %v\n", u.id, err)
			return apiExitCode(err)
		}

		fmt.Fprintf(os.Stderr, "[pixget] Updating %s\n", u.folder)
		opts := a.downloadOptions()
		opts.Layout = planner.Layout{AddUserFolder: true}
		if err := downloader.Download(ctx, a.bucket, illusts, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: user %s: %v\n", u.id, err)
			return ExitGeneralError
		}
	}

	return ExitSuccess
}

// userFolder is one "<id> <name>" prefix found in the bucket root.
type userFolder struct {
	id     string
	folder string
}

// listUserFolders scans the bucket root for per-user folders, recognized by
// a numeric leading token.
func listUserFolders(ctx context.Context, bucket *blob.Bucket) ([]userFolder, error) {
	var users []userFolder

	iter := bucket.List(&blob.ListOptions{Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list user folders: %w", err)
		}
		if !obj.IsDir {
			continue
		}

		name := strings.TrimSuffix(obj.Key, "/")
		fields := strings.Fields(name)
		if len(fields) == 0 {
			continue
		}
		if _, err := strconv.ParseUint(fields[0], 10, 64); err != nil {
			continue
		}
		users = append(users, userFolder{id: fields[0], folder: name})
	}

	return users, nil
}

// fetchNewUserWorks pages through a user's works, newest first, stopping
// after the first page whose oldest work is already stored. Everything
// newer than the stored frontier is collected; the planner drops whatever
// of it is individually present.
func fetchNewUserWorks(ctx context.Context, client *pixiv.Client, bucket *blob.Bucket, u userFolder) ([]*pixiv.Illustration, error) {
	var all []*pixiv.Illustration
	for page := 1; ; page++ {
		illusts, err := client.ListUserIllustrations(ctx, u.id, page, fastPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, illusts...)
		if len(illusts) < fastPageSize {
			return all, nil
		}

		oldest := illusts[len(illusts)-1]
		if len(oldest.ImageURLs) == 0 {
			continue
		}
		dest := path.Join(u.folder, path.Base(oldest.ImageURLs[0]))
		exists, err := bucket.Exists(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", dest, err)
		}
		if exists {
			return all, nil
		}
	}
}
