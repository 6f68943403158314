// Package stats computes frequency, diversity and genre statistics over song
// selections.
package stats

import "sort"

// Count is a key with its number of occurrences.
type Count struct {
	Key   string `yaml:"key"`
	Count int    `yaml:"count"`
}

// Counter counts keys remembering the order in which they were first seen.
type Counter struct {
	index map[string]int
	items []Count
	total int
}

func NewCounter() *Counter {
	return &Counter{index: map[string]int{}}
}

func (c *Counter) Add(key string) {
	c.AddN(key, 1)
}

func (c *Counter) AddN(key string, n int) {
	i, ok := c.index[key]
	if !ok {
		i = len(c.items)
		c.index[key] = i
		c.items = append(c.items, Count{Key: key})
	}
	c.items[i].Count += n
	c.total += n
}

func (c *Counter) Get(key string) int {
	i, ok := c.index[key]
	if !ok {
		return 0
	}
	return c.items[i].Count
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.items)
}

// Total returns the sum of all counts.
func (c *Counter) Total() int {
	return c.total
}

// Keys returns the keys in first seen order.
func (c *Counter) Keys() []string {
	keys := make([]string, len(c.items))
	for i, v := range c.items {
		keys[i] = v.Key
	}
	return keys
}

// Top returns the k most frequent keys, ties kept in first seen order. A k
// of zero or less returns every key.
func (c *Counter) Top(k int) []Count {
	vs := make([]Count, len(c.items))
	copy(vs, c.items)
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Count > vs[j].Count
	})
	if k > 0 && len(vs) > k {
		vs = vs[:k]
	}
	return vs
}
