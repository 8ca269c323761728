// Package listview provides a scrolling list for Bubble Tea dashboards.
//
// Only the rows inside the viewport are rendered, so long listings such as a
// benchmark's controls stay responsive. Navigation follows the usual keys:
// up/down and j/k, pgup/pgdown, home/end.
package listview
