// Package apiclient implements a resilient JSON-over-HTTP client.
//
// A Client is bound to one base URL. It merges a shared set of default
// headers into every request, retries HTTP error statuses with a fixed
// interval, and reports each attempt to a pluggable EventSink.
//
// # Usage
//
//	cfg := apiclient.DefaultConfig("https://dummyjson.com")
//	cfg.MaxRetries = 2
//
//	err := apiclient.Scoped(cfg, func(c *apiclient.Client) error {
//		c.SetBearerToken(token)
//
//		resp, err := c.Get(ctx, "/users/1", nil)
//		if err != nil {
//			return err
//		}
//		user, err := apiclient.Decode[User](resp)
//		...
//	}, apiclient.WithLogger(logger))
//
// # Retries
//
// Only *HTTPStatusError is retried. With MaxRetries = N a request makes at
// most N+1 attempts; the wait between attempts is Config.RetryInterval and
// is cut short when the request's context is done. Transport failures are
// returned as *TransportError on the attempt that raised them.
//
// # Errors
//
//   - *TransportError: the call did not complete
//   - *HTTPStatusError: the server answered with a status of 400 or above
//   - *ValidationError: a body did not match the target entity
//   - *ClosedClientError: the client was used after Close
//
// Use errors.As to inspect them, or the helpers IsStatus and IsRetryable.
package apiclient
