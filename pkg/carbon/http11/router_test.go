package http11

import (
	"errors"
	"testing"
)

func TestRouterFuncAdapts(t *testing.T) {
	var called *Request
	rf := RouterFunc(func(req *Request) (*Response, error) {
		called = req
		return NewResponse(StatusOK).Build(), nil
	})

	req := &Request{}
	var r Router = rf
	resp, err := r.Route(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != req {
		t.Fatal("RouterFunc did not forward the request")
	}
	if resp.Status != StatusOK {
		t.Fatalf("Status = %v", resp.Status)
	}
}

func TestRouterErrorWrapsAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	rerr := &RouterError{Err: cause}
	if rerr.Unwrap() != cause {
		t.Fatal("Unwrap should return the wrapped cause")
	}
	if rerr.Error() == "" {
		t.Fatal("Error() should not be empty")
	}
}
