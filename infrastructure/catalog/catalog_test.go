package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/command"
	"disk-sweep/infrastructure/config"
	"disk-sweep/infrastructure/filesystem"
)

// scriptedRunner answers commands from a table keyed by the full command
// line. Tools not listed are reported as not installed.
type scriptedRunner struct {
	tools     map[string]bool
	responses map[string]command.Result
	calls     []string
}

func newScriptedRunner(tools ...string) *scriptedRunner {
	r := &scriptedRunner{tools: map[string]bool{}, responses: map[string]command.Result{}}
	for _, t := range tools {
		r.tools[t] = true
	}
	return r
}

func (r *scriptedRunner) on(cmdline string, res command.Result) {
	r.responses[cmdline] = res
}

func (r *scriptedRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) command.Result {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, cmdline)
	if !r.tools[name] {
		return command.Result{ExitCode: -1, NotFound: true}
	}
	if res, ok := r.responses[cmdline]; ok {
		return res
	}
	return command.Result{}
}

func (r *scriptedRunner) LookPath(name string) (string, bool) {
	return "/usr/bin/" + name, r.tools[name]
}

func (r *scriptedRunner) ran(cmdline string) bool {
	for _, c := range r.calls {
		if c == cmdline {
			return true
		}
	}
	return false
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func buildTargets(t *testing.T, cfg *config.Config, home string, runner *scriptedRunner) []cleanup.Target {
	t.Helper()
	targets, err := Build(cfg, Env{
		Home:    home,
		Runner:  runner,
		Probe:   filesystem.NewProbe(runner),
		Remover: filesystem.NewRemover(nil),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return targets
}

func find(t *testing.T, targets []cleanup.Target, name string) cleanup.Target {
	t.Helper()
	for _, target := range targets {
		if target.Name() == name {
			return target
		}
	}
	t.Fatalf("target %q not in catalog", name)
	return nil
}

func TestBuildCatalogOrder(t *testing.T) {
	targets := buildTargets(t, config.Default(), t.TempDir(), newScriptedRunner())

	want := []string{
		Homebrew, UserCaches, UserLogs, NPMCache, PipCache, YarnCache, RubyGems,
		CocoaPodsCache, Trash, XcodeDerivedData, XcodeArchives, IOSDeviceSupport,
		IOSBackups, VSCodeCache, SpotifyCache, SlackCache, ChromeCache, Docker,
	}
	if len(targets) != len(want) {
		t.Fatalf("expected %d targets, got %d", len(want), len(targets))
	}
	for i, name := range want {
		if targets[i].Name() != name {
			t.Errorf("targets[%d] = %q, want %q", i, targets[i].Name(), name)
		}
		if targets[i].Description() == "" {
			t.Errorf("%s has no description", name)
		}
	}
}

func TestBuildDisabledAndCustom(t *testing.T) {
	cfg := config.Default()
	cfg.Targets.Disabled = []string{"docker", "Trash"}
	cfg.Targets.Custom = []config.CustomTarget{
		{Name: "Gradle Cache", Paths: []string{"~/.gradle/caches"}, Mode: config.ModeRemove},
	}

	targets := buildTargets(t, cfg, t.TempDir(), newScriptedRunner())

	if len(targets) != 17 {
		t.Fatalf("expected 17 targets, got %d", len(targets))
	}
	if targets[len(targets)-1].Name() != "Gradle Cache" {
		t.Errorf("expected custom target last, got %q", targets[len(targets)-1].Name())
	}
	for _, target := range targets {
		if target.Name() == Docker || target.Name() == Trash {
			t.Errorf("disabled target %q still present", target.Name())
		}
	}
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	cfg := config.Default()
	cfg.Targets.Custom = []config.CustomTarget{
		{Name: "trash", Paths: []string{"/tmp/x"}, Mode: config.ModeRemove},
	}

	_, err := Build(cfg, Env{Home: t.TempDir(), Runner: newScriptedRunner()})
	if !errors.Is(err, cleanup.ErrDuplicateTarget) {
		t.Errorf("Build() error = %v, want ErrDuplicateTarget", err)
	}
}

func TestToolTargetNotInstalled(t *testing.T) {
	runner := newScriptedRunner()
	npm := find(t, buildTargets(t, config.Default(), t.TempDir(), runner), NPMCache)

	if got := npm.Measure(context.Background()); !got.IsEmpty() {
		t.Errorf("Measure() = %+v, want Bytes(0)", got)
	}
	if got := npm.Clean(context.Background()); got.Kind != cleanup.OutcomeSuccess {
		t.Errorf("Clean() = %+v, want Success", got)
	}
	if runner.ran("npm cache clean --force") {
		t.Error("should not run clean command for a missing tool")
	}
}

func TestToolTargetMeasuresReportedDirectory(t *testing.T) {
	home := t.TempDir()
	cacheDir := filepath.Join(home, "npm-cache")
	writeFile(t, filepath.Join(cacheDir, "_cacache", "blob"), 300)

	runner := newScriptedRunner("npm")
	runner.on("npm config get cache", command.Result{Stdout: cacheDir + "\n"})
	npm := find(t, buildTargets(t, config.Default(), home, runner), NPMCache)

	got := npm.Measure(context.Background())
	if got.Kind != cleanup.SizeBytes || got.Bytes != 300 {
		t.Errorf("Measure() = %+v, want Bytes(300)", got)
	}

	if got := npm.Clean(context.Background()); got.Kind != cleanup.OutcomeSuccess {
		t.Errorf("Clean() = %+v, want Success", got)
	}
	if !runner.ran("npm cache clean --force") {
		t.Error("expected npm cache clean --force to run")
	}
}

func TestToolTargetFallsBackWhenLookupFails(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "Library", "Caches", "pip", "wheels", "w"), 128)

	runner := newScriptedRunner("pip3")
	runner.on("pip3 cache dir", command.Result{ExitCode: 1, Stderr: "ERROR: pip cache commands can not function"})
	pip := find(t, buildTargets(t, config.Default(), home, runner), PipCache)

	got := pip.Measure(context.Background())
	if got.Kind != cleanup.SizeBytes || got.Bytes != 128 {
		t.Errorf("Measure() = %+v, want Bytes(128)", got)
	}
}

func TestGemMeasuresCacheSubdirectory(t *testing.T) {
	home := t.TempDir()
	gemdir := filepath.Join(home, "gems")
	writeFile(t, filepath.Join(gemdir, "cache", "rake.gem"), 64)
	writeFile(t, filepath.Join(gemdir, "gems", "rake", "lib.rb"), 1000)

	runner := newScriptedRunner("gem")
	runner.on("gem environment gemdir", command.Result{Stdout: gemdir})
	gems := find(t, buildTargets(t, config.Default(), home, runner), RubyGems)

	got := gems.Measure(context.Background())
	if got.Kind != cleanup.SizeBytes || got.Bytes != 64 {
		t.Errorf("Measure() = %+v, want Bytes(64)", got)
	}
}

func TestToolCleanFailureIsPartialFailure(t *testing.T) {
	runner := newScriptedRunner("brew")
	runner.on("brew cleanup -s", command.Result{ExitCode: 1, Stderr: "Error: Permission denied @ apply2files\n"})
	brew := find(t, buildTargets(t, config.Default(), t.TempDir(), runner), Homebrew)

	got := brew.Clean(context.Background())
	if got.Kind != cleanup.OutcomePartialFailure {
		t.Fatalf("Clean() = %+v, want PartialFailure", got)
	}
	if !strings.Contains(got.Detail, "Permission denied") {
		t.Errorf("Detail = %q, want stderr included", got.Detail)
	}
	if !runner.ran("brew autoremove") {
		t.Error("expected brew autoremove to run after a failed cleanup")
	}
}

func TestToolCleanTimeoutIsPartialFailure(t *testing.T) {
	runner := newScriptedRunner("yarn")
	runner.on("yarn cache clean", command.Result{ExitCode: -1, TimedOut: true})
	yarn := find(t, buildTargets(t, config.Default(), t.TempDir(), runner), YarnCache)

	got := yarn.Clean(context.Background())
	if got.Kind != cleanup.OutcomePartialFailure || !strings.Contains(got.Detail, "timed out") {
		t.Errorf("Clean() = %+v, want timed out PartialFailure", got)
	}
}

func TestUserCachesSkipsProtectedEntries(t *testing.T) {
	home := t.TempDir()
	caches := filepath.Join(home, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "com.apple.Safari", "db"), 500)
	writeFile(t, filepath.Join(caches, "Homebrew", "bottle"), 700)
	writeFile(t, filepath.Join(caches, "com.example.app", "data"), 40)
	writeFile(t, filepath.Join(caches, "loose.tmp"), 2)

	target := find(t, buildTargets(t, config.Default(), home, newScriptedRunner()), UserCaches)

	got := target.Measure(context.Background())
	if got.Kind != cleanup.SizeBytes || got.Bytes != 42 {
		t.Errorf("Measure() = %+v, want Bytes(42)", got)
	}

	if out := target.Clean(context.Background()); out.Kind != cleanup.OutcomeSuccess {
		t.Fatalf("Clean() = %+v", out)
	}
	for _, kept := range []string{"com.apple.Safari", "Homebrew"} {
		if _, err := os.Stat(filepath.Join(caches, kept)); err != nil {
			t.Errorf("protected cache %s was removed", kept)
		}
	}
	for _, gone := range []string{"com.example.app", "loose.tmp"} {
		if _, err := os.Stat(filepath.Join(caches, gone)); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", gone)
		}
	}
}

func TestMissingDirectoriesAreEmpty(t *testing.T) {
	targets := buildTargets(t, config.Default(), t.TempDir(), newScriptedRunner())

	for _, name := range []string{UserCaches, UserLogs, Trash, XcodeDerivedData, IOSBackups, VSCodeCache, SlackCache} {
		t.Run(name, func(t *testing.T) {
			target := find(t, targets, name)
			if got := target.Measure(context.Background()); !got.IsEmpty() {
				t.Errorf("Measure() = %+v, want Bytes(0)", got)
			}
		})
	}
}

func TestXcodeDerivedDataIsReset(t *testing.T) {
	home := t.TempDir()
	derived := filepath.Join(home, "Library", "Developer", "Xcode", "DerivedData")
	writeFile(t, filepath.Join(derived, "App-abc", "Build", "x.o"), 10)

	target := find(t, buildTargets(t, config.Default(), home, newScriptedRunner()), XcodeDerivedData)
	if out := target.Clean(context.Background()); out.Kind != cleanup.OutcomeSuccess {
		t.Fatalf("Clean() = %+v", out)
	}

	entries, err := os.ReadDir(derived)
	if err != nil {
		t.Fatalf("DerivedData should be recreated: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("DerivedData should be empty, has %d entries", len(entries))
	}
}

func TestDockerSize(t *testing.T) {
	tests := []struct {
		name   string
		tools  []string
		info   command.Result
		df     command.Result
		expect cleanup.SizeKind
	}{
		{name: "not installed", expect: cleanup.SizeBytes},
		{name: "daemon down", tools: []string{"docker"}, info: command.Result{ExitCode: 1}, expect: cleanup.SizeBytes},
		{name: "df fails", tools: []string{"docker"}, df: command.Result{ExitCode: 1}, expect: cleanup.SizeBytes},
		{name: "running", tools: []string{"docker"}, df: command.Result{Stdout: "1.2GB\n500MB\n"}, expect: cleanup.SizeUnmeasured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newScriptedRunner(tt.tools...)
			runner.on("docker info", tt.info)
			runner.on("docker system df --format {{.Size}}", tt.df)
			docker := find(t, buildTargets(t, config.Default(), t.TempDir(), runner), Docker)

			got := docker.Measure(context.Background())
			if got.Kind != tt.expect {
				t.Errorf("Measure() = %+v, want kind %v", got, tt.expect)
			}
			if got.Kind == cleanup.SizeBytes && got.Bytes != 0 {
				t.Errorf("Measure() = %+v, want Bytes(0)", got)
			}
		})
	}
}

func TestCustomTargetModes(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "a", "f"), 10)
	writeFile(t, filepath.Join(home, "b", "f"), 20)
	writeFile(t, filepath.Join(home, "c", "f"), 30)

	cfg := config.Default()
	cfg.Targets.Custom = []config.CustomTarget{
		{Name: "Remove A", Paths: []string{"~/a"}, Mode: config.ModeRemove},
		{Name: "Contents B", Paths: []string{"~/b"}, Mode: config.ModeContents},
		{Name: "Reset C", Paths: []string{"~/c", "~/missing"}, Mode: config.ModeReset},
	}
	targets := buildTargets(t, cfg, home, newScriptedRunner())

	reset := find(t, targets, "Reset C")
	if got := reset.Measure(context.Background()); got.Bytes != 30 {
		t.Errorf("Measure() = %+v, want Bytes(30)", got)
	}

	for _, name := range []string{"Remove A", "Contents B", "Reset C"} {
		if out := find(t, targets, name).Clean(context.Background()); out.Kind != cleanup.OutcomeSuccess {
			t.Errorf("%s Clean() = %+v", name, out)
		}
	}

	if _, err := os.Stat(filepath.Join(home, "a")); !os.IsNotExist(err) {
		t.Error("remove mode should delete the directory")
	}
	for _, dir := range []string{"b", "c"} {
		entries, err := os.ReadDir(filepath.Join(home, dir))
		if err != nil || len(entries) != 0 {
			t.Errorf("%s should exist and be empty (err=%v, entries=%d)", dir, err, len(entries))
		}
	}
}

func TestUserCachesBlankProtectedPrefixMatchesRemover(t *testing.T) {
	home := t.TempDir()
	caches := filepath.Join(home, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "com.apple.Safari", "db"), 500)
	writeFile(t, filepath.Join(caches, "com.example.app", "data"), 40)

	cfg := config.Default()
	cfg.Targets.ProtectedCachePrefixes = []string{"com.apple", ""}
	target := find(t, buildTargets(t, cfg, home, newScriptedRunner()), UserCaches)

	got := target.Measure(context.Background())
	if got != cleanup.Bytes(40) {
		t.Errorf("Measure() = %+v, want Bytes(40)", got)
	}
	if out := target.Clean(context.Background()); out.Kind != cleanup.OutcomeSuccess {
		t.Fatalf("Clean() = %+v", out)
	}
	if _, err := os.Stat(filepath.Join(caches, "com.example.app")); !os.IsNotExist(err) {
		t.Error("measured entry should have been removed")
	}
}
