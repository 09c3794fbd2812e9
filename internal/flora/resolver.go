package flora

import (
	"context"
	"io"
	"net/http"
)

// Attempt records the outcome of probing one candidate path.
type Attempt struct {
	Path   string
	Status int   // 0 when the request never completed
	Err    error // non-nil when the transport failed
}

// Resolution is a successful probe: the response plus which candidate path
// produced it, kept for diagnostics.
type Resolution struct {
	Response *http.Response
	Path     string
	Attempts []Attempt // failed candidates tried before this one
}

// EndpointResolver issues a request against an ordered list of candidate
// paths until one returns a success status. The backend renamed several
// routes across revisions; probing lets one client work against any of them.
//
// Probing is strictly serial: a candidate is attempted only after the
// previous one resolved or failed. A transport error on one candidate is
// treated like a miss, not retried. Note the flattening this implies: a 500
// on the right path is indistinguishable from a 404 on a wrong one, which is
// why every attempt is logged with its status.
type EndpointResolver struct {
	baseURL string
	client  Doer
	logger  Logger
}

// NewEndpointResolver creates a resolver for the given base URL.
func NewEndpointResolver(baseURL string, client Doer, logger Logger) *EndpointResolver {
	return &EndpointResolver{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// Resolve tries each candidate path in order with the given method and
// headers, returning the first response in the 2xx range. Bodies of failed
// attempts are drained and closed; the caller owns the returned response
// body. When no candidate succeeds, it fails with EndpointExhaustedError.
func (r *EndpointResolver) Resolve(ctx context.Context, method string, paths []string, header http.Header) (*Resolution, error) {
	var attempts []Attempt

	for _, path := range paths {
		req, err := http.NewRequestWithContext(ctx, method, joinURL(r.baseURL, path), nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := r.client.Do(req)
		if err != nil {
			// Transport failure on one candidate is a miss, not a stop.
			r.logger.Warn("endpoint probe failed", "method", method, "path", path, "error", err)
			attempts = append(attempts, Attempt{Path: path, Err: err})
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			r.logger.Debug("endpoint resolved", "method", method, "path", path, "status", resp.StatusCode)
			return &Resolution{Response: resp, Path: path, Attempts: attempts}, nil
		}

		r.logger.Warn("endpoint probe rejected", "method", method, "path", path, "status", resp.StatusCode)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		attempts = append(attempts, Attempt{Path: path, Status: resp.StatusCode})
	}

	return nil, &EndpointExhaustedError{Method: method, Attempts: attempts}
}
