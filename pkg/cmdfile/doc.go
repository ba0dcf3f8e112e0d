// SPDX-License-Identifier: MPL-2.0

// Package cmdfile loads command definition files from a project's scripts
// directory and turns each command into a registered handler.
//
// A definition file is CUE (.cue) or TOML (.toml). Both are validated against
// the same embedded CUE schema:
//
//	commands: [{
//		invocation:  "deploy"
//		description: "Deploy the stack."
//		script:      "./deploy.sh \"$1\""
//		mode:        "inline" // or "fail", "interactive"
//		redact:      "s3cr3t"
//		flags: [
//			{name: "env", type: "string", choices: ["dev", "prod"]},
//			{name: "force", short: "f", requires: ["env"]},
//		]
//	}]
//
// A command runs exactly one of script (a shell string), argv (tokens run
// without a shell) or pipe (shell strings connected as a pipeline). Parsed
// flags reach the command as FLAG_<NAME> environment variables and the
// remaining arguments as positional parameters. Commands with project: true
// also receive the project configuration as PROJECT_<KEY> variables.
//
// A container block runs the script or argv in a fresh container through the
// Loader's engine instead of on the host:
//
//	container: {image: "postgres:16", workdir: "/work", volumes: ["./db:/work"]}
//
// An image with a build block is built from its local context the first time
// it is missing. A container given by name instead of image must already be
// running; the command is executed in it with a terminal attached:
//
//	container: {image: "app:dev", build: {context: "./app", dockerfile: "Dockerfile.dev"}}
//	container: name: "web"
package cmdfile
