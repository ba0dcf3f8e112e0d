// SPDX-License-Identifier: MPL-2.0

// Package command holds the command registry and the dispatcher that routes
// the host program's arguments to a registered handler.
//
// Commands are registered during a load phase, either by code compiled into
// the host (Use) or by plugins discovered in a scripts directory (LoadDir).
// The registry is read-only once dispatch begins.
//
// A handler is either an ArgsHandler, which receives arguments, or a
// NoArgsHandler. Commands registered by FuncName receive the full argument
// list with the command name first; commands registered from a Spec with a
// handler value receive only the arguments after the command name.
package command
