// Package consts houses constants shared across the linker's commands.
package consts

// Version is the current semantic version of the linker binary.
const Version = "0.1.0"

// Banner is the short text the version subcommand prints.
const Banner = `resource linker`
