// Package cache provides a generic, thread-safe LRU cache.
//
// inkpad uses it to hold brush masks resampled to a given pixel diameter,
// so a stroke at a steady size resamples its brush once rather than per
// stamp. Entries beyond the capacity are evicted least recently used
// first. Stats reports hits, misses and evictions for Painter.Stats.
package cache
