//go:build powerlocks_cachelinesize_64

package opt

// CacheLineSize_ is force-set to 64 bytes via the
// powerlocks_cachelinesize_64 build tag.
// Use: go build -tags=powerlocks_cachelinesize_64
const CacheLineSize_ = 64
