// Package cache persists API responses on disk with a TTL.
//
// Each entry is one JSON file under ~/.ogdash/cache, named by a SHA-256 key
// derived from the workspace, method, path, query and body of the request
// (see GenerateKey). Entries record the workspace and path they came from so
// `ogdash cache stats` and `ogdash cache clear --workspace` can report and
// prune per workspace. When the store grows past its size limit the oldest
// entries are evicted.
package cache
