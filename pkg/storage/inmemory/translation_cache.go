package inmemory

import (
	"encoding/hex"
	"slices"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pbinitiative/zendcr/pkg/bpmn/runtime"
)

// TranslationCache memoizes translations by BPMN checksum and nesting threshold.
// It is safe for concurrent use.
type TranslationCache struct {
	lru *expirable.LRU[string, runtime.Translation]
}

// NewTranslationCache creates a cache holding at most size entries, each for at most ttl.
// A ttl of zero keeps entries until they are evicted by size.
func NewTranslationCache(size int, ttl time.Duration) *TranslationCache {
	return &TranslationCache{
		lru: expirable.NewLRU[string, runtime.Translation](size, nil, ttl),
	}
}

func cacheKey(checksum [16]byte, threshold int) string {
	return hex.EncodeToString(checksum[:]) + "/" + strconv.Itoa(threshold)
}

func (c *TranslationCache) Get(checksum [16]byte, threshold int) (runtime.Translation, bool) {
	t, ok := c.lru.Get(cacheKey(checksum, threshold))
	if !ok {
		return t, false
	}
	return copyTranslation(t), true
}

func (c *TranslationCache) Add(checksum [16]byte, threshold int, translation runtime.Translation) {
	c.lru.Add(cacheKey(checksum, threshold), copyTranslation(translation))
}

func (c *TranslationCache) Len() int {
	return c.lru.Len()
}

func copyTranslation(t runtime.Translation) runtime.Translation {
	if t.Graph != nil {
		t.Graph = t.Graph.Clone()
	}
	t.NestingIds = slices.Clone(t.NestingIds)
	t.Diagnostics = slices.Clone(t.Diagnostics)
	return t
}
