// Package bufpool centralises the byte-buffer pooling used across the
// codec and connection loop on top of bytebufferpool, the same pool
// fasthttp itself is built on. The Reader's working buffer and the
// chunked-body accumulator come from here instead of a hand-rolled
// sync.Pool of []byte; the frozen head-bytes block and fixed-length bodies
// are plain allocations.
package bufpool

import "github.com/valyala/bytebufferpool"

var pool bytebufferpool.Pool

// Get returns a pooled, reset ByteBuffer ready for reuse.
func Get() *bytebufferpool.ByteBuffer {
	return pool.Get()
}

// Put returns b to the pool. b must not be used afterward.
func Put(b *bytebufferpool.ByteBuffer) {
	if b == nil {
		return
	}
	pool.Put(b)
}
