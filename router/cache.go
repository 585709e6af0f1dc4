package router

import (
	"strings"

	"github.com/ketzal-web/ketzal/http/method"
	"github.com/ketzal-web/ketzal/kv"
)

type cacheKey struct {
	method method.Method
	path   string
}

type cacheEntry struct {
	handler Handler
	params  []kv.Pair
}

// cache memoizes route lookups. It isn't synchronized on its own: readers hold the
// router's shared lock, writers the exclusive one.
//
// Every key and param is cloned, as the request strings they come from are reused.
type cache struct {
	entries map[cacheKey]cacheEntry
	limit   int
	// generation changes on every Clear, so a lookup made against a previous generation of
	// the routes is never stored.
	generation uint64
}

func newCache(limit int) *cache {
	return &cache{
		entries: make(map[cacheKey]cacheEntry),
		limit:   limit,
	}
}

func (c *cache) Get(m method.Method, path string) (cacheEntry, bool) {
	entry, found := c.entries[cacheKey{method: m, path: path}]
	return entry, found
}

// Put stores the entry, unless the cache was cleared since the generation was observed.
// A full cache is cleared before storing.
func (c *cache) Put(generation uint64, m method.Method, path string, entry cacheEntry) {
	if c.limit <= 0 || generation != c.generation {
		return
	}

	if len(c.entries) >= c.limit {
		c.Clear()
	}

	params := make([]kv.Pair, len(entry.params))
	for i, pair := range entry.params {
		params[i] = kv.Pair{Key: strings.Clone(pair.Key), Value: strings.Clone(pair.Value)}
	}

	entry.params = params
	c.entries[cacheKey{method: m, path: strings.Clone(path)}] = entry
}

func (c *cache) Generation() uint64 {
	return c.generation
}

func (c *cache) Len() int {
	return len(c.entries)
}

func (c *cache) Clear() {
	clear(c.entries)
	c.generation++
}
