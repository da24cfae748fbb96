//go:build powerlocks_cachelinesize_32

package opt

// CacheLineSize_ is force-set to 32 bytes via the
// powerlocks_cachelinesize_32 build tag.
// Use: go build -tags=powerlocks_cachelinesize_32
const CacheLineSize_ = 32
