package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/akitsu/pixget/internal/pixiv"
)

func TestRunDispatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, ExitInvalidArgs},
		{"unknown command", []string{"bogus"}, ExitInvalidArgs},
		{"help", []string{"help"}, ExitSuccess},
		{"users without ids", []string{"users"}, ExitInvalidArgs},
		{"users non-numeric id", []string{"users", "not-a-number"}, ExitInvalidArgs},
		{"ranking bad date", []string{"ranking", "-date", "24-09-2016"}, ExitInvalidArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func openTestBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func TestListUserFolders(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	seed := []string{
		"395595 KD/1_p0.jpg",
		"1184799 somebody/2_p0.jpg",
		"2016-09-24 ranking/1 - 3_p0.jpg",
		"loose-file.jpg",
	}
	for _, key := range seed {
		if err := bucket.WriteAll(ctx, key, []byte("x"), nil); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	users, err := listUserFolders(ctx, bucket)
	if err != nil {
		t.Fatalf("listUserFolders: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("got %d user folders, want 2: %+v", len(users), users)
	}
	found := map[string]string{}
	for _, u := range users {
		found[u.id] = u.folder
	}
	if found["395595"] != "395595 KD" {
		t.Errorf("folder for 395595 = %q", found["395595"])
	}
	if found["1184799"] != "1184799 somebody" {
		t.Errorf("folder for 1184799 = %q", found["1184799"])
	}
}

func TestFindDuplicates(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	seed := []string{
		"10 a/100.jpg",    // duplicate: _p0 twin exists
		"10 a/100_p0.jpg", // twin, kept
		"10 a/200.jpg",    // no twin, kept
		"10 a/300_p0.jpg", // no bare form, kept
	}
	for _, key := range seed {
		if err := bucket.WriteAll(ctx, key, []byte("x"), nil); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	duplicates, err := findDuplicates(ctx, bucket)
	if err != nil {
		t.Fatalf("findDuplicates: %v", err)
	}

	if len(duplicates) != 1 || duplicates[0] != "10 a/100.jpg" {
		t.Errorf("duplicates = %v, want [10 a/100.jpg]", duplicates)
	}
}

// fakeWorksServer pages a fixed set of work IDs, newest first, through the
// user works endpoint.
func fakeWorksServer(t *testing.T, workIDs []int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if page <= 0 || perPage <= 0 {
			t.Errorf("bad paging params: page=%q per_page=%q",
				r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(workIDs) {
			start = len(workIDs)
		}
		if end > len(workIDs) {
			end = len(workIDs)
		}

		works := make([]map[string]any, 0, end-start)
		for _, id := range workIDs[start:end] {
			works = append(works, map[string]any{
				"id":         id,
				"page_count": 1,
				"image_urls": map[string]string{
					"large": fmt.Sprintf("http://img.example/img/%d_p0.jpg", id),
				},
				"user": map[string]any{"id": 42, "name": "artist"},
			})
		}

		resp, err := json.Marshal(map[string]any{"status": "success", "response": works})
		if err != nil {
			t.Fatalf("marshal works: %v", err)
		}
		w.Write(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchAllUserWorks(t *testing.T) {
	// 45 works with page size 20: pages of 20, 20, 5.
	ids := make([]int, 45)
	for i := range ids {
		ids[i] = 1000 - i
	}
	server := fakeWorksServer(t, ids)

	client := pixiv.NewClient(pixiv.Options{AccessToken: "tok", APIBase: server.URL})

	illusts, err := fetchAllUserWorks(context.Background(), client, "42", 20)
	if err != nil {
		t.Fatalf("fetchAllUserWorks: %v", err)
	}
	if len(illusts) != 45 {
		t.Errorf("got %d works, want 45", len(illusts))
	}
}

func TestFetchNewUserWorksStopsAtStoredFrontier(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	// 60 works, newest first. The oldest work of page 2 (id 961) is already
	// stored, so fast paging must stop after page 2.
	ids := make([]int, 60)
	for i := range ids {
		ids[i] = 1000 - i
	}
	server := fakeWorksServer(t, ids)

	folder := "42 artist"
	if err := bucket.WriteAll(ctx, folder+"/961_p0.jpg", []byte("x"), nil); err != nil {
		t.Fatalf("seed frontier: %v", err)
	}

	client := pixiv.NewClient(pixiv.Options{AccessToken: "tok", APIBase: server.URL})

	illusts, err := fetchNewUserWorks(ctx, client, bucket, userFolder{id: "42", folder: folder})
	if err != nil {
		t.Fatalf("fetchNewUserWorks: %v", err)
	}

	// Two pages of fastPageSize works, page 3 never fetched.
	if len(illusts) != 2*fastPageSize {
		t.Errorf("got %d works, want %d", len(illusts), 2*fastPageSize)
	}
}

func TestFetchNewUserWorksFetchesEverythingWhenNew(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	ids := make([]int, 30)
	for i := range ids {
		ids[i] = 1000 - i
	}
	server := fakeWorksServer(t, ids)

	client := pixiv.NewClient(pixiv.Options{AccessToken: "tok", APIBase: server.URL})

	illusts, err := fetchNewUserWorks(ctx, client, bucket, userFolder{id: "42", folder: "42 artist"})
	if err != nil {
		t.Fatalf("fetchNewUserWorks: %v", err)
	}
	if len(illusts) != 30 {
		t.Errorf("got %d works, want 30", len(illusts))
	}
}
