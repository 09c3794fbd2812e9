package testutil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// RecordedRequest captures one request seen by the FakeDoer.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type stub struct {
	status int
	body   string
	header http.Header
	err    error
}

// FakeDoer is a scripted flora.Doer. Responses are registered per
// method+path; each registration is consumed in order, with the last one
// repeating for any further calls. Unstubbed paths answer 404. Safe for
// concurrent use.
type FakeDoer struct {
	mu       sync.Mutex
	stubs    map[string][]stub
	Requests []RecordedRequest
}

// NewFakeDoer creates an empty FakeDoer.
func NewFakeDoer() *FakeDoer {
	return &FakeDoer{stubs: make(map[string][]stub)}
}

func key(method, path string) string { return method + " " + path }

// Stub registers a response for the given method and URL path.
func (d *FakeDoer) Stub(method, path string, status int, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stubs[key(method, path)] = append(d.stubs[key(method, path)], stub{status: status, body: body})
}

// StubError registers a transport failure for the given method and URL path.
func (d *FakeDoer) StubError(method, path string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stubs[key(method, path)] = append(d.stubs[key(method, path)], stub{err: err})
}

// Do records the request and plays back the next scripted response.
func (d *FakeDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	// EscapedPath keeps percent-encoded segments intact, so stubs match the
	// paths exactly as services build them.
	path := req.URL.EscapedPath()

	d.mu.Lock()
	d.Requests = append(d.Requests, RecordedRequest{
		Method: req.Method,
		Path:   path,
		Header: req.Header.Clone(),
		Body:   body,
	})

	k := key(req.Method, path)
	queue := d.stubs[k]
	var s stub
	switch len(queue) {
	case 0:
		s = stub{status: http.StatusNotFound, body: `{"detail":"not found"}`}
	case 1:
		s = queue[0]
	default:
		s = queue[0]
		d.stubs[k] = queue[1:]
	}
	d.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	for hk, vs := range s.header {
		header[hk] = vs
	}

	return &http.Response{
		Status:     fmt.Sprintf("%d %s", s.status, http.StatusText(s.status)),
		StatusCode: s.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

// CallCount returns how many requests hit the given method and path.
func (d *FakeDoer) CallCount(method, path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, r := range d.Requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}
