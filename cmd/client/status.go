package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/tempbucket/tempbucket/pkg/rest/client"
)

type statusCmd struct{}

func (*statusCmd) Name() string {
	return "status"
}

func (*statusCmd) Synopsis() string {
	return "show server status"
}

func (*statusCmd) Usage() string {
	return `status:
	print server version and upstream details as JSON
`
}

func (*statusCmd) SetFlags(f *flag.FlagSet) {}

func (*statusCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	status, err := c.Status(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	return printJSON(status)
}
