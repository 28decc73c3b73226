package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"gocloud.dev/blob"
)

// duplicatePattern matches a single-page key "<id>.<ext>" whose multi-page
// twin would be "<id>_p0.<ext>". Early versions saved both forms.
var duplicatePattern = regexp.MustCompile(`^(.*?)(\d+)\.([A-Za-z]+)$`)

func runDedupe(args []string) int {
	fs := flag.NewFlagSet("dedupe", flag.ExitOnError)
	common := registerCommonFlags(fs)

	yes := fs.Bool("yes", false, "Delete duplicates instead of only listing them")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: pixget dedupe [options]

Find stored images saved under both "<id>.<ext>" and "<id>_p0.<ext>" and
remove the former. Without -yes the duplicates are only listed.

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

	duplicates, err := findDuplicates(ctx, a.bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	if len(duplicates) == 0 {
		fmt.Fprintln(os.Stderr, "[pixget] No duplicates found")
		return ExitSuccess
	}

	if !*yes {
		for _, key := range duplicates {
			fmt.Println(key)
		}
		fmt.Fprintf(os.Stderr, "[pixget] %d duplicates found, re-run with -yes to delete\n", len(duplicates))
		return ExitSuccess
	}

	for _, key := range duplicates {
		if err := a.bucket.Delete(ctx, key); err != nil {
			fmt.Fprintf(os.Stderr, "Error: delete %s: %v\n", key, err)
			return ExitStorageError
		}
		fmt.Fprintf(os.Stderr, "[pixget] Deleted %s\n", key)
	}
	fmt.Fprintf(os.Stderr, "[pixget] Deleted %d duplicates\n", len(duplicates))

	return ExitSuccess
}

// findDuplicates returns every key "<prefix><id>.<ext>" whose twin
// "<prefix><id>_p0.<ext>" also exists.
func findDuplicates(ctx context.Context, bucket *blob.Bucket) ([]string, error) {
	keys := make(map[string]bool)

	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list bucket: %w", err)
		}
		keys[obj.Key] = true
	}

	var duplicates []string
	for key := range keys {
		m := duplicatePattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		twin := m[1] + m[2] + "_p0." + m[3]
		if keys[twin] {
			duplicates = append(duplicates, key)
		}
	}
	sort.Strings(duplicates)
	return duplicates, nil
}
