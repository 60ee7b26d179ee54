package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/neobeach/core/internal/app"
	"github.com/neobeach/core/internal/config"
	"github.com/neobeach/core/internal/server"
)

// runEnv is what every command runs against.
type runEnv struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// CLI is the command line interface of the engine.
type CLI struct {
	Serve  Serve  `kong:"cmd,help='Start the web server.'"`
	Routes Routes `kong:"cmd,help='Print the compiled route table.'"`

	ConfigFile string           `kong:"name='config',type='path',help='Path to a YAML configuration file. Defaults to the NEOBEACH_CONFIG_FILE variable.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

func newCLI() (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("neobeach"),
		kong.Description(config.EngineName+" HTTP application engine."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": config.EngineVersion},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}
	c.kong = kparser
	return c, nil
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx
	return nil
}

// Execute runs the parsed command.
func (c *CLI) Execute(env *runEnv) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = env.Stdout
	c.kong.Stderr = env.Stderr

	//nolint:wrapcheck // Commands wrap their own errors.
	return c.kctx.Run(env, c)
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	var path []string
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			path = append(path, p.Command.Name)
		}
	}
	return strings.Join(path, " ")
}

func (c *CLI) loadConfig() (*config.Config, error) {
	if c.ConfigFile != "" {
		return config.LoadFile(c.ConfigFile)
	}
	return config.Load()
}

// Serve starts the web server.
type Serve struct {
	Host        string `help:"Interface to listen on. Overrides the configuration."`
	Port        int    `help:"Port to listen on. Overrides the configuration."`
	KeepRunning bool   `name:"keep-running" help:"Keep serving after an unhandled handler failure instead of exiting."`
}

// Run the serve command.
func (s *Serve) Run(env *runEnv, cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Server.Host = s.Host
	}
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}

	policy := server.FailFast
	if s.KeepRunning {
		policy = server.Recover
	}

	a, err := app.NewApplication(env.Ctx, cfg, app.WithServerOptions(server.WithFailurePolicy(policy)))
	if err != nil {
		return err
	}

	a.Server.MustLoadRouters(infoRouter(cfg, a.Logger))
	return a.Run(env.Ctx)
}

// Routes prints the route table.
type Routes struct{}

// Run the routes command.
func (r *Routes) Run(env *runEnv, cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	cfg.Telemetry.Metrics = false

	logger := slog.New(slog.DiscardHandler)
	a, err := app.NewApplication(env.Ctx, cfg, app.WithLogger(logger))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Server.LoadRouters(infoRouter(cfg, logger)); err != nil {
		return err
	}

	routes, err := a.Server.Routes()
	if err != nil {
		return err
	}

	data := make([][]string, 0, len(routes))
	for _, route := range routes {
		note := ""
		if route.Pattern == cfg.Health.Path || strings.HasPrefix(route.Pattern, cfg.Health.Path+"/") {
			note = "pre-mount"
		}
		data = append(data, []string{route.Method, route.Pattern, note})
	}

	if err := renderTable([]string{"Method", "Pattern", "Note"}, data, env.Stdout); err != nil {
		return fmt.Errorf("failed rendering route table: %w", err)
	}
	return nil
}
