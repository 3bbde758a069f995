// Package resilience groups the fault tolerance helpers wrapped around every
// outbound call of the digest pipeline: page fetches and summarizer APIs.
//
//   - circuitbreaker: fail fast while a remote keeps failing
//   - retry: exponential backoff with jitter for transient errors
//
//	cb := circuitbreaker.New(circuitbreaker.PageFetchConfig())
//	page, err := circuitbreaker.Do(cb, func() (*Page, error) {
//	    var page *Page
//	    err := retry.WithBackoff(ctx, retry.PageFetchConfig(), func() error {
//	        var err error
//	        page, err = fetchOnce(ctx)
//	        return err
//	    })
//	    return page, err
//	})
package resilience
