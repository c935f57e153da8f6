package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/appstore/cmd/gen/genapidoc"
	"github.com/yusufsyaifudin/appstore/cmd/migrate"
	"github.com/yusufsyaifudin/appstore/cmd/server"
)

func main() {
	const appName, appVersion = "appstore", "1.0.0"

	serverCmd := server.NewCmd(appName, appVersion)

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":        serverCmd, // default command if no subcommand defined
		"server":  serverCmd,
		"migrate": migrate.NewCmd(),
		"apidoc": func() (cli.Command, error) {
			return genapidoc.NewApiDocCmd(genapidoc.ApiDocCfg{Title: appName, Version: appVersion})
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
