package pixiv

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Illustration is the shape the download engine works with: the owning
// user, an optional rank, and one image URL per page. The planner filters
// ImageURLs in place as it discovers already-satisfied destinations.
type Illustration struct {
	UserID    string
	UserName  string
	Rank      string
	ImageURLs []string
}

// envelope is the common public-API response wrapper.
type envelope struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// workRecord is one illustration as returned by the works and ranking
// endpoints. Only the fields the engine needs are decoded.
type workRecord struct {
	ID        int64      `json:"id"`
	PageCount int        `json:"page_count"`
	ImageURLs imageURLs  `json:"image_urls"`
	User      userRecord `json:"user"`
}

type imageURLs struct {
	Large string `json:"large"`
}

type userRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// rankedRecord wraps a work with its rank on the ranking endpoint.
type rankedRecord struct {
	Rank int        `json:"rank"`
	Work workRecord `json:"work"`
}

// rankingPage is one element of the ranking endpoint's response array.
type rankingPage struct {
	Works []rankedRecord `json:"works"`
}

// toIllustration converts an API record. rank is empty for user listings.
func (w workRecord) toIllustration(rank string) *Illustration {
	return &Illustration{
		UserID:    fmt.Sprintf("%d", w.User.ID),
		UserName:  w.User.Name,
		Rank:      rank,
		ImageURLs: pageURLs(w.ImageURLs.Large, w.PageCount),
	}
}

// pageURLs expands the large image URL of a multi-page work. The API only
// reports the first page ("..._p0.jpg"); pages 1..n-1 use the same URL
// with the page index substituted.
func pageURLs(large string, pageCount int) []string {
	if large == "" {
		return nil
	}
	if pageCount <= 1 || !strings.Contains(large, "_p0") {
		return []string{large}
	}

	urls := make([]string, 0, pageCount)
	for page := 0; page < pageCount; page++ {
		urls = append(urls, strings.Replace(large, "_p0", fmt.Sprintf("_p%d", page), 1))
	}
	return urls
}
