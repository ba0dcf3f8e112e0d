// SPDX-License-Identifier: MPL-2.0

package cmdfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmgmt/pmgmt/internal/container"
	"github.com/pmgmt/pmgmt/internal/testutil"
	"github.com/pmgmt/pmgmt/pkg/command"
	"github.com/pmgmt/pmgmt/pkg/console"
	"github.com/pmgmt/pmgmt/pkg/process"
)

type harness struct {
	dispatcher *command.Dispatcher
	registry   *command.Registry
	loader     *Loader
	out        *bytes.Buffer
	errOut     *bytes.Buffer
}

func newHarness(t *testing.T, name, content string) *harness {
	t.Helper()
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, name, content)

	var out, errOut bytes.Buffer
	c := console.New(console.WithStreams(&out, &errOut), console.WithExit(testutil.Exit))
	loader := &Loader{
		Runner:      process.New(c, process.WithStdin(strings.NewReader(""))),
		ProjectFile: filepath.Join(dir, "project.yaml"),
	}
	r := command.NewRegistry(c)
	if err := r.LoadDir(dir, filepath.Ext(name), loader.Open); err != nil {
		t.Fatalf("LoadDir() error: %v", err)
	}
	return &harness{
		dispatcher: command.NewDispatcher(r, command.WithProgram("project")),
		registry:   r,
		loader:     loader,
		out:        &out,
		errOut:     &errOut,
	}
}

// run dispatches args and reports the exit code, 0 when nothing exited.
func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	code, exited := testutil.CatchExit(t, func() {
		code := h.dispatcher.Handle(args)
		if code != 0 {
			panic(testutil.Exited{Code: code})
		}
	})
	if !exited {
		return 0
	}
	return code
}

const greetCUE = `
commands: [{
	invocation:  "greet"
	description: "Greets the first argument."
	script:      "echo \"$1 $FLAG_NAME $FLAG_LOUD\""
	flags: [
		{name: "name", type: "string", help: "Who is greeting"},
		{name: "loud", short: "l"},
	]
}]
`

func TestPlugin_RegistersCommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "greet.cue", greetCUE)
	cmd, ok := h.registry.Lookup("greet")
	if !ok {
		t.Fatal("greet not registered")
	}
	if cmd.Description != "Greets the first argument." || cmd.ByName {
		t.Errorf("command = %+v", cmd)
	}
}

func TestPlugin_FlagsAndArguments(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "greet.cue", greetCUE)
	if code := h.run(t, "greet", "--name=Ada", "-l", "world"); code != 0 {
		t.Fatalf("exit %d: %s", code, h.errOut.String())
	}
	if h.out.String() != "world Ada true\n" {
		t.Errorf("stdout = %q", h.out.String())
	}
	if !strings.HasPrefix(h.errOut.String(), "+ echo \"$1 $FLAG_NAME $FLAG_LOUD\" world\n") {
		t.Errorf("echo = %q", h.errOut.String())
	}
}

func TestPlugin_UnsetFlags(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "greet.cue", greetCUE)
	if code := h.run(t, "greet"); code != 0 {
		t.Fatalf("exit %d: %s", code, h.errOut.String())
	}
	if h.out.String() != "  false\n" {
		t.Errorf("stdout = %q", h.out.String())
	}
}

func TestPlugin_Validation(t *testing.T) {
	t.Parallel()

	const deployTOML = `
[[commands]]
invocation = "deploy"
script = "echo deploying $FLAG_ENV"

[[commands.flags]]
name = "env"
type = "string"
choices = ["dev", "prod"]

[[commands.flags]]
name = "force"
short = "f"
requires = ["env"]
`

	tests := []struct {
		name    string
		args    []string
		code    int
		wantOut string
		wantErr string
	}{
		{name: "ok", args: []string{"deploy", "-f", "--env", "prod"}, wantOut: "deploying prod\n"},
		{name: "requirement", args: []string{"deploy", "--force"}, code: 1, wantErr: "--force requires --env"},
		{name: "switched off", args: []string{"deploy", "--force=false"}, wantOut: "deploying\n"},
		{name: "choice", args: []string{"deploy", "--env=staging"}, code: 1, wantErr: `invalid value "staging"`},
		{name: "unknown flag", args: []string{"deploy", "--nope"}, code: 1, wantErr: "unknown flag: --nope"},
		{name: "help", args: []string{"deploy", "--help"}, code: 0, wantErr: "Usage: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, "deploy.toml", deployTOML)
			if code := h.run(t, tt.args...); code != tt.code {
				t.Fatalf("exit %d, want %d: %s", code, tt.code, h.errOut.String())
			}
			if h.out.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", h.out.String(), tt.wantOut)
			}
			if !strings.Contains(h.errOut.String(), tt.wantErr) {
				t.Errorf("stderr %q does not contain %q", h.errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestPlugin_Modes(t *testing.T) {
	t.Parallel()

	const modesCUE = `
commands: [
	{invocation: "check", script: "echo out; echo boom >&2; exit 3", mode: "fail"},
	{invocation: "list", argv: ["echo", "argv:"]},
	{invocation: "count", pipe: ["echo a; echo b", "wc -l"]},
	{invocation: "login", script: "echo token=s3cr3t", redact: "s3cr3t"},
	{invocation: "env", script: "echo $GREETING", env: {GREETING: "hi"}},
	{invocation: "level", script: "echo level=$FLAG_LEVEL", flags: [{name: "level", type: "int", default: "2"}]},
]
`

	t.Run("fail mode shows stderr only", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "modes.cue", modesCUE)
		if code := h.run(t, "check"); code != 3 {
			t.Fatalf("exit %d, want 3", code)
		}
		if h.out.Len() != 0 || !strings.HasSuffix(h.errOut.String(), "boom\n") {
			t.Errorf("stdout = %q, stderr = %q", h.out.String(), h.errOut.String())
		}
	})

	t.Run("argv appends arguments", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "modes.cue", modesCUE)
		if code := h.run(t, "list", "a", "b c"); code != 0 {
			t.Fatalf("exit %d", code)
		}
		if h.out.String() != "argv: a b c\n" {
			t.Errorf("stdout = %q", h.out.String())
		}
	})

	t.Run("pipe", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "modes.cue", modesCUE)
		if code := h.run(t, "count"); code != 0 {
			t.Fatalf("exit %d: %s", code, h.errOut.String())
		}
		if strings.TrimSpace(h.out.String()) != "2" {
			t.Errorf("stdout = %q", h.out.String())
		}
		if !strings.HasPrefix(h.errOut.String(), "+ echo a; echo b | wc -l\n") {
			t.Errorf("echo = %q", h.errOut.String())
		}
	})

	t.Run("redaction", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "modes.cue", modesCUE)
		h.run(t, "login")
		if h.out.String() != "token=s3cr3t\n" {
			t.Errorf("child should see the secret, stdout = %q", h.out.String())
		}
		if h.errOut.String() != "+ echo token=******\n" {
			t.Errorf("echo = %q", h.errOut.String())
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "modes.cue", modesCUE)
		h.run(t, "env")
		if h.out.String() != "hi\n" {
			t.Errorf("stdout = %q", h.out.String())
		}
	})

	t.Run("int flag default and override", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, "modes.cue", modesCUE)
		h.run(t, "level")
		h.run(t, "level", "--level", "5")
		if h.out.String() != "level=2\nlevel=5\n" {
			t.Errorf("stdout = %q", h.out.String())
		}
		if code := h.run(t, "level", "--level=x"); code != 1 {
			t.Errorf("bad int exit = %d, want 1", code)
		}
	})
}

func TestPlugin_Project(t *testing.T) {
	t.Parallel()

	const projectCUE = `
commands: [{invocation: "where", script: "echo $PROJECT_NAME", project: true}]
`

	h := newHarness(t, "project.cue", projectCUE)
	if code := h.run(t, "where"); code != 1 {
		t.Fatalf("missing project: exit %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "Missing ") {
		t.Errorf("stderr = %q", h.errOut.String())
	}

	testutil.MustWriteFile(t, filepath.Dir(h.loader.ProjectFile), "project.yaml", "name: storefront\n")
	h.out.Reset()
	if code := h.run(t, "where"); code != 0 {
		t.Fatalf("exit %d: %s", code, h.errOut.String())
	}
	if h.out.String() != "storefront\n" {
		t.Errorf("stdout = %q", h.out.String())
	}
}

func TestLoader_OpenError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "bad.cue", `commands: [{invocation: "x"}]`)
	c := console.New(console.WithStreams(&bytes.Buffer{}, &bytes.Buffer{}), console.WithExit(testutil.Exit))
	loader := &Loader{Runner: process.New(c)}

	err := command.NewRegistry(c).LoadDir(dir, ".cue", loader.Open)
	if err == nil || !strings.Contains(err.Error(), "bad.cue") {
		t.Errorf("LoadDir() error = %v", err)
	}
}

const containerCUE = `
commands: [{
	invocation: "psql"
	script:     "psql -U $FLAG_USER \"$1\""
	redact:     "s3cr3t"
	env: PGPASSWORD: "s3cr3t"
	flags: [{name: "user", type: "string", default: "postgres"}]
	container: {image: "postgres:16", workdir: "/work", volumes: ["/tmp:/work"]}
}]
`

func TestPlugin_ContainerRequiresEngine(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "db.cue", containerCUE)
	if code := h.run(t, "psql"); code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "no container engine configured") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
}

func TestPlugin_Container(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	fake := testutil.MustWriteFile(t, dir, "docker", "#!/bin/sh\nprintf '%s\\n' \"$@\" >> "+logPath+"\n")
	if err := os.Chmod(fake, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	h := newHarness(t, "db.cue", containerCUE)
	engine, err := container.NewEngine(h.loader.Runner, container.EngineTypeDocker)
	if err != nil {
		t.Fatal(err)
	}
	h.loader.Engine = engine

	if code := h.run(t, "psql", "--user", "app", "shop"); code != 0 {
		t.Fatalf("exit %d: %s", code, h.errOut.String())
	}
	if strings.Contains(h.errOut.String(), "s3cr3t") {
		t.Errorf("secret echoed: %q", h.errOut.String())
	}

	logged, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"run", "--rm", "-w", "/work",
		"-e", "FLAG_USER=app", "-e", "PGPASSWORD=s3cr3t",
		"-v", "/tmp:/work", "postgres:16",
		"sh", "-c", `psql -U $FLAG_USER "$1"`, "pmgmt", "shop",
	}, "\n") + "\n"
	if string(logged) != want {
		t.Errorf("docker args = %q, want %q", logged, want)
	}
}

const builtContainerCUE = `
commands: [
	{
		invocation: "serve"
		argv: ["./serve"]
		container: {
			image: "app:dev"
			build: {context: "./app", dockerfile: "Dockerfile.dev", args: GO_VERSION: "1.25"}
		}
	},
	{
		invocation: "console"
		script:     "rails console"
		mode:       "interactive"
		env: RAILS_ENV: "development"
		container: name: "web"
	},
]
`

func TestPlugin_ContainerBuildAndExec(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	script := "#!/bin/sh\n" +
		"echo \"$*\" >> " + logPath + "\n" +
		"[ \"$1\" = image ] && exit 1\n" +
		"[ \"$1\" = version ] && [ -n \"$FAKE_DOCKER_DOWN\" ] && exit 1\n" +
		"exit 0\n"
	fake := testutil.MustWriteFile(t, dir, "docker", script)
	if err := os.Chmod(fake, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	setup := func(t *testing.T) *harness {
		t.Helper()
		if err := os.Remove(logPath); err != nil && !os.IsNotExist(err) {
			t.Fatal(err)
		}
		h := newHarness(t, "app.cue", builtContainerCUE)
		engine, err := container.NewEngine(h.loader.Runner, container.EngineTypeDocker)
		if err != nil {
			t.Fatal(err)
		}
		h.loader.Engine = engine
		return h
	}
	calls := func(t *testing.T) string {
		t.Helper()
		logged, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatal(err)
		}
		return string(logged)
	}

	t.Run("missing image is built", func(t *testing.T) {
		h := setup(t)
		if code := h.run(t, "serve", "8080"); code != 0 {
			t.Fatalf("exit %d: %s", code, h.errOut.String())
		}
		want := "image inspect app:dev\n" +
			"version\n" +
			"build -f app/Dockerfile.dev -t app:dev --build-arg GO_VERSION=1.25 ./app\n" +
			"run --rm app:dev ./serve 8080\n"
		if got := calls(t); got != want {
			t.Errorf("docker calls = %q, want %q", got, want)
		}
		if !strings.Contains(h.errOut.String(), "Building app:dev") {
			t.Errorf("stderr = %q", h.errOut.String())
		}
	})

	t.Run("engine unavailable", func(t *testing.T) {
		t.Setenv("FAKE_DOCKER_DOWN", "1")
		h := setup(t)
		if code := h.run(t, "serve"); code != 1 {
			t.Fatalf("exit %d, want 1", code)
		}
		if !strings.Contains(h.errOut.String(), "container engine is not available: docker") {
			t.Errorf("stderr = %q", h.errOut.String())
		}
		if strings.Contains(calls(t), "build") {
			t.Errorf("build ran without a daemon: %q", calls(t))
		}
	})

	t.Run("named container", func(t *testing.T) {
		h := setup(t)
		if code := h.run(t, "console", "sandbox"); code != 0 {
			t.Fatalf("exit %d: %s", code, h.errOut.String())
		}
		want := "exec -it -e RAILS_ENV=development web sh -c rails console pmgmt sandbox\n"
		if got := calls(t); got != want {
			t.Errorf("docker calls = %q, want %q", got, want)
		}
	})
}
