package planner

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"gocloud.dev/blob"

	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/queue"
)

// Layout describes where images land inside the destination bucket.
type Layout struct {
	// BasePrefix is the key prefix for this run, e.g. "2016-09-24 ranking".
	// Empty means the bucket root.
	BasePrefix string

	// AddUserFolder places each image under a per-user "<id> <name>" prefix.
	AddUserFolder bool

	// AddRankPrefix prepends "<rank> - " to filenames.
	AddRankPrefix bool
}

// illegalReplacer scrubs characters that are not legal in directory names.
var illegalReplacer = strings.NewReplacer(
	"<", " ", ">", " ", ":", " ", `"`, " ",
	"/", " ", `\`, " ", "|", " ", "?", " ", "*", " ",
)

// Plan computes destination keys for every image URL, drops the ones whose
// destination already exists (removing them from the illustration in
// place), dedups on destination key, and returns the filled queue and the
// number of tasks enqueued. A zero count means there is nothing to do.
func Plan(ctx context.Context, bucket *blob.Bucket, illusts []*pixiv.Illustration, layout Layout) (*queue.Queue, int, error) {
	q := queue.New()
	count := 0
	seen := make(map[string]bool)
	dirs := make(map[string]string) // user id -> resolved folder name

	for _, illust := range illusts {
		if illust == nil || len(illust.ImageURLs) == 0 {
			continue
		}

		prefix := layout.BasePrefix
		if layout.AddUserFolder {
			dir, ok := dirs[illust.UserID]
			if !ok {
				var err error
				dir, err = resolveUserDir(ctx, bucket, layout.BasePrefix, illust.UserID, illust.UserName)
				if err != nil {
					return nil, 0, err
				}
				dirs[illust.UserID] = dir
			}
			prefix = path.Join(layout.BasePrefix, dir)
		}

		outstanding := illust.ImageURLs[:0]
		for _, url := range illust.ImageURLs {
			name := filename(url)
			if layout.AddRankPrefix && illust.Rank != "" {
				name = illust.Rank + " - " + name
			}
			dest := path.Join(prefix, name)

			exists, err := bucket.Exists(ctx, dest)
			if err != nil {
				return nil, 0, fmt.Errorf("planner: check %s: %w", dest, err)
			}
			if exists {
				continue // already satisfied, drop from the illustration
			}

			outstanding = append(outstanding, url)
			if seen[dest] {
				continue // another task already owns this destination
			}
			seen[dest] = true

			q.Push(queue.Task{URL: url, Dest: dest, Name: name})
			count++
		}
		illust.ImageURLs = outstanding
	}

	return q, count, nil
}

// resolveUserDir finds the folder for a user. Existing folders win when
// their leading whitespace-delimited token is the user id, so renamed
// users keep filling their old folder instead of growing a second one.
func resolveUserDir(ctx context.Context, bucket *blob.Bucket, basePrefix, userID, userName string) (string, error) {
	listPrefix := ""
	if basePrefix != "" {
		listPrefix = strings.TrimSuffix(basePrefix, "/") + "/"
	}

	iter := bucket.List(&blob.ListOptions{Prefix: listPrefix, Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("planner: list user folders: %w", err)
		}
		if !obj.IsDir {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, listPrefix), "/")
		if firstToken(name) == userID {
			return name, nil
		}
	}

	return strings.TrimSpace(illegalReplacer.Replace(userID + " " + userName)), nil
}

// filename returns the last path segment of a URL.
func filename(url string) string {
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}

// firstToken returns the leading whitespace-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
