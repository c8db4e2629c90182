//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"disk-sweep/domain/cleanup"
	"disk-sweep/infrastructure/catalog"
	"disk-sweep/infrastructure/config"
	"disk-sweep/infrastructure/filesystem"
	"disk-sweep/infrastructure/logging"

	"github.com/cucumber/godog"
)

// configContext holds test state for configuration scenarios
type configContext struct {
	home       string
	configPath string
	cfg        *config.Config
	targets    []cleanup.Target
	buildErr   error
	addErr     error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext *configContext

func getConfigContext() *configContext {
	return SharedConfigContext
}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		home, err := os.MkdirTemp("", "disk-sweep-config-")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			home:       home,
			configPath: filepath.Join(home, ".config", "disk-sweep", "config.yaml"),
			cfg:        config.Default(),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext != nil {
			os.RemoveAll(SharedConfigContext.home)
		}
		SharedConfigContext = nil
		return c, nil
	})

	ctx.Step(`^a configuration with a custom target "([^"]*)" at "([^"]*)"$`, aConfigurationWithACustomTarget)
	ctx.Step(`^a configuration that disables "([^"]*)"$`, aConfigurationThatDisables)
	ctx.Step(`^an empty configuration file$`, anEmptyConfigurationFile)
	ctx.Step(`^I build the catalog$`, iBuildTheCatalog)
	ctx.Step(`^I add the custom target "([^"]*)" at "([^"]*)" in "([^"]*)" mode$`, iAddTheCustomTarget)
	ctx.Step(`^I reload the configuration$`, iReloadTheConfiguration)
	ctx.Step(`^the last target should be "([^"]*)"$`, theLastTargetShouldBe)
	ctx.Step(`^the catalog should have (\d+) targets$`, theCatalogShouldHaveTargets)
	ctx.Step(`^the catalog should not contain "([^"]*)"$`, theCatalogShouldNotContain)
	ctx.Step(`^building the catalog should fail with a duplicate name error$`, buildingShouldFailWithDuplicate)
	ctx.Step(`^the configuration should have a custom target "([^"]*)" in "([^"]*)" mode$`, theConfigurationShouldHaveCustomTarget)
}

func aConfigurationWithACustomTarget(name, path string) error {
	c := getConfigContext()
	c.cfg.Targets.Custom = append(c.cfg.Targets.Custom, config.CustomTarget{
		Name:  name,
		Paths: []string{path},
		Mode:  config.ModeRemove,
	})
	return nil
}

func aConfigurationThatDisables(name string) error {
	c := getConfigContext()
	c.cfg.Targets.Disabled = append(c.cfg.Targets.Disabled, name)
	return nil
}

func anEmptyConfigurationFile() error {
	c := getConfigContext()
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(c.configPath, nil, 0644); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load empty config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func iBuildTheCatalog() error {
	c := getConfigContext()
	runner := newToolRunner()
	c.targets, c.buildErr = catalog.Build(c.cfg, catalog.Env{
		Home:    c.home,
		Runner:  runner,
		Probe:   filesystem.NewProbe(runner),
		Remover: filesystem.NewRemover(nil),
		Log:     logging.Discard(),
	})
	return nil
}

func iAddTheCustomTarget(name, path, mode string) error {
	c := getConfigContext()
	mgr := config.NewConfigManager(c.cfg, c.configPath)
	c.addErr = mgr.AddCustomTarget(name, "", mode, []string{path})
	return c.addErr
}

func iReloadTheConfiguration() error {
	c := getConfigContext()
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) built() error {
	if c.buildErr != nil {
		return fmt.Errorf("catalog build failed: %w", c.buildErr)
	}
	return nil
}

func theLastTargetShouldBe(name string) error {
	c := getConfigContext()
	if err := c.built(); err != nil {
		return err
	}
	if len(c.targets) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	if got := c.targets[len(c.targets)-1].Name(); got != name {
		return fmt.Errorf("last target = %q, want %q", got, name)
	}
	return nil
}

func theCatalogShouldHaveTargets(n int) error {
	c := getConfigContext()
	if err := c.built(); err != nil {
		return err
	}
	if len(c.targets) != n {
		return fmt.Errorf("catalog has %d targets, want %d", len(c.targets), n)
	}
	return nil
}

func theCatalogShouldNotContain(name string) error {
	c := getConfigContext()
	if err := c.built(); err != nil {
		return err
	}
	for _, t := range c.targets {
		if strings.EqualFold(t.Name(), name) {
			return fmt.Errorf("catalog still contains %q", name)
		}
	}
	return nil
}

func buildingShouldFailWithDuplicate() error {
	err := getConfigContext().buildErr
	if !errors.Is(err, cleanup.ErrDuplicateTarget) {
		return fmt.Errorf("build error = %v, want ErrDuplicateTarget", err)
	}
	return nil
}

func theConfigurationShouldHaveCustomTarget(name, mode string) error {
	c := getConfigContext()
	for _, ct := range c.cfg.Targets.Custom {
		if ct.Name == name {
			if ct.Mode != mode {
				return fmt.Errorf("custom target %q has mode %q, want %q", name, ct.Mode, mode)
			}
			return nil
		}
	}
	return fmt.Errorf("configuration has no custom target %q", name)
}
