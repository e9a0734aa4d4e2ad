package parsec

import (
	"math/rand/v2"
	"sync"
	"unsafe"
)

// cacheSentinel is a distinct type used only for the cache's pre-populated
// dummy keys, so it can never collide with a real incoming tag (spec.md
// §4.3 "Initialization").
type cacheSentinel int

type cacheKey struct {
	prevTag  any
	inputPtr uintptr
	parserID uint64
}

type cacheEntry struct {
	value State
	err   error
	isErr bool
	slot  int
}

// Cache is a fixed-size memo table keyed by (previous_tag, input_identity,
// parser_identity), with randomized, cold-biased eviction. One Cache backs
// exactly one CacheSize scope and is exclusively owned by the parsers
// constructed under it (spec.md §4.3, §5).
type Cache struct {
	mu      sync.Mutex
	size    int
	slots   []cacheKey
	entries map[cacheKey]cacheEntry
	hits    int
	misses  int
}

func newCache(size int) *Cache {
	c := &Cache{size: size}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.slots = make([]cacheKey, c.size)
	c.entries = make(map[cacheKey]cacheEntry, c.size)
	for i := 0; i < c.size; i++ {
		key := cacheKey{prevTag: cacheSentinel(i)}
		c.slots[i] = key
		c.entries[key] = cacheEntry{slot: i}
	}
	c.hits = 0
	c.misses = 0
}

// inputIdentity returns a stable identity for s's backing array: the same
// underlying string data yields the same identity, matching spec.md §9's
// "pointer-equality when the API accepts a borrowed slice". Callers pass the
// remaining slice (input[pos:]), not the whole input: Go advances a string's
// data pointer by the slice offset, so the pointer alone already encodes
// position the same way the source's id(slice)-per-offset trick does,
// without a separate position field in cacheKey. An empty string has no
// backing array, so its identity is zero for every input; wrapCache
// therefore never caches a call made at the end of the input.
func inputIdentity(s string) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.StringData(s)))
}

// evictIndex picks a cubic-biased random slot: round(r^3 * (size-1)),
// biasing strongly toward low indices so that entries promoted toward the
// high end (hit repeatedly) are rarely evicted.
func (c *Cache) evictIndex() int {
	r := rand.Float64()
	idx := int(r*r*r*float64(c.size-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > c.size-1 {
		idx = c.size - 1
	}
	return idx
}

// get performs a hit lookup and, on success, promotes the entry one step
// toward the high end of slots: slots[i] and slots[min(size-1, i+1)] swap,
// and both entries' bookkeeping slot index is updated so the table
// invariant (map[slots[i]].slot == i for every i) keeps holding — the
// source only updates the looked-up entry, which silently drifts the
// invariant it otherwise guarantees; updating both sides here is required
// to keep that invariant true without changing any observable parse result.
func (c *Cache) get(key cacheKey) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return cacheEntry{}, false
	}

	c.hits++
	i := entry.slot
	j := i + 1
	if j > c.size-1 {
		j = c.size - 1
	}
	if j != i {
		displaced := c.slots[j]
		c.slots[i] = displaced
		c.slots[j] = key

		d := c.entries[displaced]
		d.slot = i
		c.entries[displaced] = d

		entry.slot = j
		c.entries[key] = entry
	}
	return entry, true
}

func (c *Cache) put(key cacheKey, value State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.misses++
	idx := c.evictIndex()
	old := c.slots[idx]
	delete(c.entries, old)
	c.slots[idx] = key
	c.entries[key] = cacheEntry{value: value, err: err, isErr: err != nil, slot: idx}
}

// Stats reports the cache's running hit/miss counters.
type Stats struct {
	Hits   int
	Misses int
}

// CacheStats is the handle returned by CacheSize, letting callers inspect
// hit/miss counters and reset the table to its initial sentinel state.
type CacheStats struct {
	cache *Cache
}

// Stats returns a snapshot of the cache's hit/miss counters.
func (s *CacheStats) Stats() Stats {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	return Stats{Hits: s.cache.hits, Misses: s.cache.misses}
}

// Erase returns the table to its initial sentinel state: subsequent parses
// behave identically to a fresh scope (spec.md §8).
func (s *CacheStats) Erase() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.reset()
}

// CacheSize opens a memoization scope of the given size: every primitive or
// combinator constructed while the scope is active is wrapped with a memo
// lookup keyed on (previous tag, input identity, parser identity). The
// scope's cache is exclusively owned by parsers built under it; parsers
// built outside any CacheSize scope are never cached (spec.md §4.3).
//
//	stats, restore := parsec.CacheSize(128)
//	defer restore()
func CacheSize(size int) (stats *CacheStats, restore func()) {
	c := newCache(size)
	pushCache(c)
	return &CacheStats{cache: c}, popCache
}

// wrapCache wraps fn with a memo lookup against cache, if one was active at
// construction time. Caching is observationally transparent (spec.md
// invariant 4): a hit replays exactly the value or error a miss would have
// produced.
func wrapCache(cache *Cache, parserID uint64, fn parseFunc) parseFunc {
	if cache == nil {
		return fn
	}
	return func(st State, input string) (State, error) {
		rest := input[st.Position:]
		if len(rest) == 0 {
			return fn(st, input)
		}
		key := cacheKey{prevTag: st.Tag, inputPtr: inputIdentity(rest), parserID: parserID}

		if entry, ok := cache.get(key); ok {
			if entry.isErr {
				return State{}, entry.err
			}
			return entry.value, nil
		}

		value, err := fn(st, input)
		cache.put(key, value, err)
		return value, err
	}
}
