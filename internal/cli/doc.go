// Package cli implements the command-line interface for changelog-relay.
//
// The cli package provides the Cobra-based CLI: the default command runs the
// polling loop, "once" runs a single cycle and "preview" shows which updates
// would be posted (text or JSON) without posting them. It wires the scraper,
// storage, notifier and watcher packages together from the loaded config.
package cli
