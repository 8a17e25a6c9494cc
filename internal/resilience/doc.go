// Package resilience groups the fault tolerance helpers used around the
// database and the article page fetcher.
//
//   - circuitbreaker wraps gobreaker for the database connection and for
//     outbound page requests.
//   - retry re-runs an operation that failed with a transient error.
//
// Usage Example:
//
//	err := retry.WithBackoff(ctx, retry.PageFetchConfig(), func() error {
//	    page, err = circuitbreaker.Run(cb, func() (*Page, error) {
//	        return fetch(ctx)
//	    })
//	    return err
//	})
package resilience
