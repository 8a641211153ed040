// Package cli defines the radgo command tree. Each subcommand builds its own
// App, so commands never share loggers or metric registries.
package cli
