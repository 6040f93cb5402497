package preset

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// Entry pairs an addon key with its entry, used for splices and for
// the finalized ordered listing.
type Entry struct {
	Key   string        `json:"key"`
	Addon stremio.Addon `json:"addon"`
}

// Config is the insertion-ordered addon-key to entry mapping a
// composition threads through its transformers. Order is meaningful:
// it drives the final install order on the account. A Config is never
// shared across compositions.
type Config struct {
	om *orderedmap.OrderedMap[string, stremio.Addon]
}

func NewConfig() *Config {
	return &Config{om: orderedmap.New[string, stremio.Addon]()}
}

func (c *Config) Get(key string) (stremio.Addon, bool) {
	return c.om.Get(key)
}

// Set inserts a new key at the end, or updates an existing key in
// place without moving it.
func (c *Config) Set(key string, addon stremio.Addon) {
	c.om.Set(key, addon)
}

func (c *Config) Delete(key string) {
	c.om.Delete(key)
}

func (c *Config) Len() int {
	return c.om.Len()
}

// Keys returns the addon keys in order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, c.om.Len())
	for pair := c.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Entries returns the ordered key/entry listing.
func (c *Config) Entries() []Entry {
	entries := make([]Entry, 0, c.om.Len())
	for pair := c.om.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Entry{Key: pair.Key, Addon: pair.Value})
	}
	return entries
}

// Splice replaces baseKey with the given entries at baseKey's ordinal
// position: the replacements end up contiguous, in the given order,
// exactly where baseKey was. A missing baseKey appends at the end.
func (c *Config) Splice(baseKey string, replacements []Entry) {
	pair := c.om.GetPair(baseKey)
	if pair == nil {
		for _, r := range replacements {
			c.om.Set(r.Key, r.Addon)
		}
		return
	}

	anchor := ""
	hasAnchor := false
	if prev := pair.Prev(); prev != nil {
		anchor = prev.Key
		hasAnchor = true
	}
	c.om.Delete(baseKey)

	for _, r := range replacements {
		c.om.Set(r.Key, r.Addon)
		if hasAnchor {
			_ = c.om.MoveAfter(r.Key, anchor)
		} else {
			_ = c.om.MoveToFront(r.Key)
		}
		anchor = r.Key
		hasAnchor = true
	}
}
