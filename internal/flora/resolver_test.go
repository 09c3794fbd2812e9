package flora_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"floradex/internal/flora"
	"floradex/internal/testutil"
)

func TestEndpointResolver_Resolve(t *testing.T) {
	t.Run("returns first successful candidate", func(t *testing.T) {
		t.Parallel()
		doer := testutil.NewFakeDoer()
		doer.StubError(http.MethodGet, "/a", errors.New("connection refused"))
		doer.Stub(http.MethodGet, "/b", http.StatusNotFound, `{"detail":"nope"}`)
		doer.Stub(http.MethodGet, "/c", http.StatusOK, `[]`)

		r := flora.NewEndpointResolver("https://api.example.com", doer, flora.NewNopLogger())

		res, err := r.Resolve(context.Background(), http.MethodGet, []string{"/a", "/b", "/c"}, nil)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		defer res.Response.Body.Close()

		if res.Path != "/c" {
			t.Errorf("Resolution.Path = %q, want %q", res.Path, "/c")
		}
		if res.Response.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", res.Response.StatusCode)
		}
		if len(res.Attempts) != 2 {
			t.Fatalf("len(Attempts) = %d, want 2", len(res.Attempts))
		}
		if res.Attempts[0].Err == nil {
			t.Error("first attempt should record a transport error")
		}
		if res.Attempts[1].Status != http.StatusNotFound {
			t.Errorf("second attempt status = %d, want 404", res.Attempts[1].Status)
		}
	})

	t.Run("stops probing after the first success", func(t *testing.T) {
		t.Parallel()
		doer := testutil.NewFakeDoer()
		doer.Stub(http.MethodGet, "/a", http.StatusOK, `[]`)
		doer.Stub(http.MethodGet, "/b", http.StatusOK, `[]`)

		r := flora.NewEndpointResolver("https://api.example.com", doer, flora.NewNopLogger())

		res, err := r.Resolve(context.Background(), http.MethodGet, []string{"/a", "/b"}, nil)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		res.Response.Body.Close()

		if n := doer.CallCount(http.MethodGet, "/b"); n != 0 {
			t.Errorf("second candidate was probed %d times, want 0", n)
		}
	})

	t.Run("exhausts all candidates", func(t *testing.T) {
		t.Parallel()
		doer := testutil.NewFakeDoer()
		doer.Stub(http.MethodDelete, "/x", http.StatusNotFound, ``)
		doer.StubError(http.MethodDelete, "/y", errors.New("timeout"))

		r := flora.NewEndpointResolver("https://api.example.com", doer, flora.NewNopLogger())

		_, err := r.Resolve(context.Background(), http.MethodDelete, []string{"/x", "/y"}, nil)

		var exhausted *flora.EndpointExhaustedError
		if !errors.As(err, &exhausted) {
			t.Fatalf("Resolve() error = %v, want EndpointExhaustedError", err)
		}
		if exhausted.Method != http.MethodDelete {
			t.Errorf("Method = %q, want DELETE", exhausted.Method)
		}
		if len(exhausted.Attempts) != 2 {
			t.Errorf("len(Attempts) = %d, want 2", len(exhausted.Attempts))
		}
	})

	t.Run("forwards headers to every candidate", func(t *testing.T) {
		t.Parallel()
		doer := testutil.NewFakeDoer()
		doer.Stub(http.MethodGet, "/old", http.StatusNotFound, ``)
		doer.Stub(http.MethodGet, "/new", http.StatusOK, `[]`)

		header := http.Header{}
		header.Set("Authorization", "Bearer tok")

		r := flora.NewEndpointResolver("https://api.example.com", doer, flora.NewNopLogger())
		res, err := r.Resolve(context.Background(), http.MethodGet, []string{"/old", "/new"}, header)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		res.Response.Body.Close()

		for _, req := range doer.Requests {
			if got := req.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization on %s = %q, want %q", req.Path, got, "Bearer tok")
			}
		}
	})

	t.Run("single candidate degenerates to a plain request", func(t *testing.T) {
		t.Parallel()
		doer := testutil.NewFakeDoer()
		doer.Stub(http.MethodGet, "/api/plants/", http.StatusOK, `[]`)

		r := flora.NewEndpointResolver("https://api.example.com", doer, flora.NewNopLogger())
		res, err := r.Resolve(context.Background(), http.MethodGet, []string{"/api/plants/"}, nil)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		res.Response.Body.Close()

		if res.Path != "/api/plants/" {
			t.Errorf("Resolution.Path = %q, want %q", res.Path, "/api/plants/")
		}
		if len(res.Attempts) != 0 {
			t.Errorf("len(Attempts) = %d, want 0", len(res.Attempts))
		}
	})
}
