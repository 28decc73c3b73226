// Package pixiv is the client for the pixiv public API and image host.
//
// This package handles:
//   - OAuth password-grant login and bearer-token reuse
//   - Listing a user's illustrations
//   - Listing ranking illustrations for a date and mode
//   - Converting API records to the internal Illustration shape
//   - Image transfers with the Referer header the image host requires
//
// # Usage
//
//	client := pixiv.NewClient(pixiv.Options{
//	    Username: user,
//	    Password: pass,
//	    Timeout:  10 * time.Second,
//	})
//
//	illusts, err := client.ListUserIllustrations(ctx, "7210261", 100)
//
// The API surface is intentionally narrow: the download engine only needs
// user id, user name, rank, and the per-page image URLs.
package pixiv
