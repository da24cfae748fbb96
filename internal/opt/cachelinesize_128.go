//go:build powerlocks_cachelinesize_128

package opt

// CacheLineSize_ is force-set to 128 bytes via the
// powerlocks_cachelinesize_128 build tag.
// Use: go build -tags=powerlocks_cachelinesize_128
const CacheLineSize_ = 128
