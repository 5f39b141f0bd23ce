// Package httputil provides HTTP helpers shared by the registry client and
// the archive downloader.
//
// # Retry
//
// [Backoff] re-runs an operation with a doubling delay, but only for
// errors wrapped with [Retryable] (network failures and 5xx responses, as
// classified by [CheckStatus]). Everything else is returned immediately:
//
//	err := httputil.Backoff{Attempts: 3}.Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(fmt.Errorf("%w: %v", httputil.ErrNetwork, err))
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Defaults
//
//   - Request timeout: 10 seconds ([NewClient])
//   - Attempts: 3, doubling from 1 second up to 30 seconds ([Backoff])
package httputil
