package server

import (
	"context"
	"flag"
	"log"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/appstore/container"
	"github.com/yusufsyaifudin/appstore/extd"
)

const (
	ExitSuccess = 0
	ExitErr     = 1
)

type Cmd struct {
	flags      *flag.FlagSet
	appName    string
	appVersion string
	configFile string
}

func NewCmd(appName, appVersion string) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{
			flags:      &flag.FlagSet{},
			appName:    appName,
			appVersion: appVersion,
		}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd("", "")

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("server", flag.ContinueOnError)
	c.flags.StringVar(&c.configFile, "config", container.DefaultConfigFile,
		"Config file to load")
	c.flags.StringVar(&c.configFile, "c", container.DefaultConfigFile,
		"Alias for config file to load")
	return nil
}

func (c *Cmd) Help() string {
	return `Start the storefront HTTP API.

Usage: appstore server [-config config.yml]`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing config argument: %s\n", err)
		return ExitErr
	}

	cfg, err := container.LoadConfig(c.configFile)
	if err != nil {
		log.Printf("error load config: %s\n", err)
		return ExitErr
	}

	if cfg.App.Name == "" {
		cfg.App.Name = c.appName
	}

	if cfg.App.Version == "" {
		cfg.App.Version = c.appVersion
	}

	err = extd.RunServer(context.Background(), cfg)
	if err != nil {
		log.Printf("server stopped with error: %s\n", err)
		return ExitErr
	}

	return ExitSuccess
}

func (c *Cmd) Synopsis() string {
	return `Start the storefront HTTP API`
}
