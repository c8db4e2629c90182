package catalog

import (
	"context"
	"errors"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/config"
)

// custom builds a path-based target from config
func (b *builder) custom(ct config.CustomTarget) cleanup.Target {
	paths := make([]string, len(ct.Paths))
	for i, p := range ct.Paths {
		paths[i] = config.ExpandHome(p, b.env.Home)
	}

	description := ct.Description
	if description == "" {
		description = "Custom target"
	}

	var clean func(string) error
	switch ct.Mode {
	case config.ModeContents:
		clean = func(p string) error { return b.env.Remover.RemoveContents(p) }
	case config.ModeReset:
		clean = b.env.Remover.Reset
	default:
		clean = b.env.Remover.RemoveAll
	}

	return cleanup.NewTask(ct.Name, description,
		b.measurePaths(paths...),
		func(ctx context.Context) error {
			var errs []error
			for _, p := range paths {
				if err := clean(p); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		})
}
