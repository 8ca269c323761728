// Package detail provides lazily loaded detail panes for the dashboards.
//
// A pane creates its fetch.Hook the first time it is opened and reuses it
// afterwards, so re-opening the same item shows the settled state without a
// new call while opening a different item supersedes the previous one.
// Failures render inline with a retry on 'r'; they never end the program.
//
// Watch bridges a hook's Updates channel into Bubble Tea: each command
// delivers one StateMsg and the receiver issues the next Watch.
package detail
