package catalog

import (
	"context"
	"errors"
	"io/fs"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/filesystem"
)

// Built-in target names
const (
	Homebrew         = "Homebrew Cleanup"
	UserCaches       = "User Caches"
	UserLogs         = "User Logs"
	NPMCache         = "NPM Cache"
	PipCache         = "Pip Cache"
	YarnCache        = "Yarn Cache"
	RubyGems         = "Ruby Gems"
	CocoaPodsCache   = "CocoaPods Cache"
	Trash            = "Trash"
	XcodeDerivedData = "Xcode Derived Data"
	XcodeArchives    = "Xcode Archives"
	IOSDeviceSupport = "iOS Device Support"
	IOSBackups       = "iOS Backups"
	VSCodeCache      = "VS Code Cache"
	SpotifyCache     = "Spotify Cache"
	SlackCache       = "Slack Cache"
	ChromeCache      = "Chrome Cache"
	Docker           = "Docker"
)

// builtin returns the fixed catalog in execution order
func (b *builder) builtin() []cleanup.Target {
	library := func(elem ...string) string {
		return b.path(append([]string{"Library"}, elem...)...)
	}

	caches := library("Caches")
	logs := library("Logs")
	trash := b.path(".Trash")
	derivedData := library("Developer", "Xcode", "DerivedData")
	archives := library("Developer", "Xcode", "Archives")
	deviceSupport := library("Developer", "Xcode", "iOS DeviceSupport")
	backups := library("Application Support", "MobileSync", "Backup")
	vscode := []string{
		library("Application Support", "Code", "CachedData"),
		library("Application Support", "Code", "Cache"),
	}
	slack := []string{
		library("Application Support", "Slack", "Cache"),
		library("Application Support", "Slack", "Service Worker", "CacheStorage"),
	}
	spotify := library("Caches", "com.spotify.client")
	chrome := library("Caches", "Google", "Chrome")
	pods := library("Caches", "CocoaPods")

	return []cleanup.Target{
		cleanup.NewTask(Homebrew,
			"Clean Homebrew cache, old versions, and unused dependencies",
			b.measureTool(library("Caches", "Homebrew"), "brew", "--cache"),
			b.cleanTool(
				[]string{"brew", "cleanup", "-s"},
				[]string{"brew", "autoremove"},
			)),
		cleanup.NewTask(UserCaches,
			"Clean ~/Library/Caches (general apps)",
			func(ctx context.Context) (cleanup.SizeResult, error) {
				return b.measureEntries(ctx, caches, func(e fs.DirEntry) bool {
					return !filesystem.HasAnyPrefix(e.Name(), b.protected)
				})
			},
			func(ctx context.Context) error {
				return b.env.Remover.RemoveContents(caches, b.protected...)
			}),
		cleanup.NewTask(UserLogs,
			"Clean ~/Library/Logs",
			b.measurePath(logs),
			func(ctx context.Context) error {
				return b.env.Remover.RemoveContents(logs)
			}),
		cleanup.NewTask(NPMCache,
			"Clean npm package cache",
			b.measureTool("", "npm", "config", "get", "cache"),
			b.cleanTool([]string{"npm", "cache", "clean", "--force"})),
		cleanup.NewTask(PipCache,
			"Clean Python pip cache",
			b.measureTool(library("Caches", "pip"), "pip3", "cache", "dir"),
			b.cleanTool([]string{"pip3", "cache", "purge"})),
		cleanup.NewTask(YarnCache,
			"Clean Yarn package cache",
			b.measureTool("", "yarn", "cache", "dir"),
			b.cleanTool([]string{"yarn", "cache", "clean"})),
		cleanup.NewTask(RubyGems,
			"Clean old Ruby gems",
			b.measureToolSub("cache", "", "gem", "environment", "gemdir"),
			b.cleanTool([]string{"gem", "cleanup"})),
		cleanup.NewTask(CocoaPodsCache,
			"Clean CocoaPods cache",
			func(ctx context.Context) (cleanup.SizeResult, error) {
				if _, ok := b.env.Runner.LookPath("pod"); !ok {
					return cleanup.SizeResult{}, cleanup.ErrToolUnavailable
				}
				return b.env.Probe.Measure(ctx, pods), nil
			},
			b.cleanTool([]string{"pod", "cache", "clean", "--all"})),
		cleanup.NewTask(Trash,
			"Empty Trash (~/.Trash)",
			b.measurePath(trash),
			func(ctx context.Context) error {
				return b.env.Remover.RemoveContents(trash)
			}),
		cleanup.NewTask(XcodeDerivedData,
			"Clean Xcode build artifacts",
			b.measurePath(derivedData),
			func(ctx context.Context) error {
				return b.env.Remover.Reset(derivedData)
			}),
		cleanup.NewTask(XcodeArchives,
			"Clean Xcode app archives",
			b.measurePath(archives),
			func(ctx context.Context) error {
				return b.env.Remover.Reset(archives)
			}),
		cleanup.NewTask(IOSDeviceSupport,
			"Clean old iOS device support files",
			func(ctx context.Context) (cleanup.SizeResult, error) {
				return b.measureEntries(ctx, deviceSupport, fs.DirEntry.IsDir)
			},
			func(ctx context.Context) error {
				return b.env.Remover.RemoveSubdirs(deviceSupport)
			}),
		cleanup.NewTask(IOSBackups,
			"Clean old iOS device backups",
			func(ctx context.Context) (cleanup.SizeResult, error) {
				return b.measureEntries(ctx, backups, fs.DirEntry.IsDir)
			},
			func(ctx context.Context) error {
				return b.env.Remover.RemoveSubdirs(backups)
			}),
		cleanup.NewTask(VSCodeCache,
			"Clean VS Code cached data",
			b.measurePaths(vscode...),
			b.removePaths(vscode...)),
		cleanup.NewTask(SpotifyCache,
			"Clean Spotify app cache",
			b.measurePath(spotify),
			b.removePaths(spotify)),
		cleanup.NewTask(SlackCache,
			"Clean Slack app cache",
			b.measurePaths(slack...),
			b.removePaths(slack...)),
		cleanup.NewTask(ChromeCache,
			"Clean Google Chrome cache",
			b.measurePath(chrome),
			b.removePaths(chrome)),
		cleanup.NewTask(Docker,
			"Clean Docker containers, images, and cache",
			b.measureDocker,
			b.cleanTool([]string{"docker", "system", "prune", "-a", "-f"})),
	}
}

// removePaths deletes every path, attempting all of them
func (b *builder) removePaths(paths ...string) cleanup.CleanFunc {
	return func(ctx context.Context) error {
		var errs []error
		for _, p := range paths {
			if err := b.env.Remover.RemoveAll(p); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// measureDocker cannot size Docker data as a directory. A running daemon
// that answers `docker system df` yields Unmeasured so the operator is
// still asked; a stopped daemon means there is nothing to clean.
func (b *builder) measureDocker(ctx context.Context) (cleanup.SizeResult, error) {
	if _, ok := b.env.Runner.LookPath("docker"); !ok {
		return cleanup.SizeResult{}, cleanup.ErrToolUnavailable
	}
	log := b.log(Docker)

	if res := b.env.Runner.Run(ctx, dockerInfoTimeout, "docker", "info"); !res.OK() {
		log.Info("Docker daemon not running, skipping size check")
		return cleanup.Bytes(0), nil
	}

	res := b.env.Runner.Run(ctx, dockerDfTimeout, "docker", "system", "df", "--format", "{{.Size}}")
	if !res.OK() {
		log.WithField("stderr", res.Stderr).Warn("docker system df failed")
		return cleanup.Bytes(0), nil
	}

	log.WithField("report", res.Stdout).Info("Docker size report")
	return cleanup.Unmeasured("reported by docker system df"), nil
}
