package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/tempbucket/tempbucket/pkg/rest/client"
)

type generateCmd struct {
	kind string
}

func (*generateCmd) Name() string {
	return "generate"
}

func (*generateCmd) Synopsis() string {
	return "generate a new temporary address"
}

func (*generateCmd) Usage() string {
	return `generate [flags]:
	print a newly generated address
`
}

func (g *generateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&g.kind, "kind", "", "address kind: domain, plusGmail, dotGmail, or googleMail")
}

func (g *generateCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	address, err := c.GenerateAddress(ctx, g.kind)
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Println(address)
	return subcommands.ExitSuccess
}
