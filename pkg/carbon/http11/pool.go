package http11

import "sync"

var requestPool = sync.Pool{
	New: func() interface{} { return &Request{} },
}

func getRequest() *Request {
	return requestPool.Get().(*Request)
}

// putRequest resets req and returns it to the pool. The head-bytes buffer
// is released by the connection loop via ReleaseRequest once it is safe
// to discard (after the response has been flushed), so putRequest alone
// must not be called while req.head may still be referenced by an
// in-flight response.
func putRequest(req *Request) {
	req.reset()
	requestPool.Put(req)
}

// ReleaseRequest is the connection loop's hook for returning a fully
// dispatched Request to the pool, after its response has been flushed and
// the head bytes are no longer needed by anything (including response
// bodies that might echo request data).
func ReleaseRequest(req *Request) {
	putRequest(req)
}
