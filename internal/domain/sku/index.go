package sku

import "sort"

// Index maps normalized SKUs to values. Every candidate form of a key is
// registered, so a lookup succeeds whichever padding the other side used.
type Index[T any] struct {
	values  map[string]T
	aliases map[string]string
	raws    map[string]string
}

func NewIndex[T any]() *Index[T] {
	return &Index[T]{
		values:  make(map[string]T),
		aliases: make(map[string]string),
		raws:    make(map[string]string),
	}
}

// Put stores value under the normalized form of raw. It reports false when
// raw has no usable SKU. When the canonical key was already present the
// previous value is returned with replaced=true.
func (i *Index[T]) Put(raw any, value T) (key Key, previous T, replaced bool) {
	key = Normalize(raw)
	if !key.Valid {
		return key, previous, false
	}
	previous, replaced = i.values[key.Canonical]
	i.values[key.Canonical] = value
	i.raws[key.Canonical] = rawString(raw)
	for _, candidate := range key.Candidates {
		i.aliases[candidate] = key.Canonical
	}
	return key, previous, replaced
}

// Lookup tries the candidates of raw in order.
func (i *Index[T]) Lookup(raw any) (T, string, bool) {
	return i.LookupKey(Normalize(raw))
}

func (i *Index[T]) LookupKey(key Key) (T, string, bool) {
	var zero T
	if !key.Valid {
		return zero, "", false
	}
	for _, candidate := range key.Candidates {
		canonical, ok := i.aliases[candidate]
		if !ok {
			continue
		}
		if value, ok := i.values[canonical]; ok {
			return value, canonical, true
		}
	}
	return zero, "", false
}

// Get returns the value stored under an already canonical key.
func (i *Index[T]) Get(canonical string) (T, bool) {
	value, ok := i.values[canonical]
	return value, ok
}

// Raw returns the last raw SKU stored under canonical.
func (i *Index[T]) Raw(canonical string) string {
	return i.raws[canonical]
}

func (i *Index[T]) Len() int {
	return len(i.values)
}

// Keys returns canonical keys in sorted order.
func (i *Index[T]) Keys() []string {
	keys := make([]string, 0, len(i.values))
	for key := range i.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
