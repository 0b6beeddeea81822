// Package indexer crawls a remote library's paginated listing and
// persists perceptual fingerprints of every item's cover thumbnail.
//
// A run walks the listing page by page. Items within a page are
// fingerprinted concurrently under a semaphore bound, and a page's
// tasks fully drain before the crawl checkpoint advances and the next
// page is fetched, so resource use is bounded by the concurrency
// setting rather than library size. The checkpoint advances by the
// full page length even when some items fail, which keeps resumed
// runs from reprocessing pages that were already attempted end to end.
//
// Failure handling is split by blast radius: an unreadable listing
// page aborts the run, while a single item's thumbnail fetch, hash
// computation, or store write failure is counted and skipped.
package indexer
