package http11

import "time"

// HttpServerConfig holds the limits and timeouts the parser and
// connection loop enforce. The zero value is not meant to be used
// directly — call DefaultConfig and override individual fields, mirroring
// the teacher's Config/DefaultConfig convention in pkg/shockwave/server.
type HttpServerConfig struct {
	MaxRequestLineBytes  int
	MaxHeaderBytesTotal  int
	MaxHeaderLineBytes   int
	MaxHeaderCount       int
	MaxPathBytes         int
	MaxQueryBytes        int
	MaxBodyBytes         int64 // 0 means unlimited
	MaxChunkSizeBytes    int64
	MaxTrailerBytesTotal int

	HeaderReadTimeout  time.Duration
	RequestBodyTimeout time.Duration
	KeepAliveTimeout   time.Duration
}

// DefaultConfig returns the defaults from the library's external-interface
// table. Every field here must be accepted as a default per that table.
func DefaultConfig() HttpServerConfig {
	return HttpServerConfig{
		MaxRequestLineBytes:  8 * 1024,
		MaxHeaderBytesTotal:  64 * 1024,
		MaxHeaderLineBytes:   8 * 1024,
		MaxHeaderCount:       100,
		MaxPathBytes:         4 * 1024,
		MaxQueryBytes:        8 * 1024,
		MaxBodyBytes:         0,
		MaxChunkSizeBytes:    8 * 1024 * 1024,
		MaxTrailerBytesTotal: 8 * 1024,

		HeaderReadTimeout:  10 * time.Second,
		RequestBodyTimeout: 60 * time.Second,
		KeepAliveTimeout:   75 * time.Second,
	}
}
