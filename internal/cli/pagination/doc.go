// Package pagination provides the shared --page, --page-size, --limit,
// --offset and --sort handling of list commands.
//
// Endpoints that paginate server-side receive the page through
// PaginationParams.ServerPage; everything else is sorted with a Sorter and
// sliced with Apply. PaginationMeta describes the page that was returned.
package pagination
