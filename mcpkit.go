// Package mcpkit holds suite-wide metadata shared by the CLI commands.
package mcpkit

// Version is the mcpkit CLI version, set at release time.
var Version = "0.4.0"
