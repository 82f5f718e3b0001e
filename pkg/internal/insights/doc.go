// Package insights computes and caches per-category answer statistics.
//
// An insight is the full, unpaginated tally of every question in a category.
// It is computed on demand by the Aggregator, stored whole in the Cache and
// sliced into pages by the Service, so one cached entry serves every page size.
//
// The Cache holds a bounded number of insights. When a new category has to be
// inserted into a full cache, the entry with the lowest access score is evicted,
// ties going to the entry inserted first. Scores only grow, so this approximates
// LFU rather than LRU: a category that was hot an hour ago outranks one that was
// touched once just now. Entries also expire after a fixed TTL regardless of score.
//
// Writes to questions and responses invalidate the affected categories before the
// write is acknowledged. Invalidation is not transactional with the write: a read
// interleaved between the commit and the invalidation may still observe the old
// insight. A generation counter per category keeps a computation that started
// before an invalidation from repopulating the cache with its result.
package insights
