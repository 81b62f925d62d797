package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/tempbucket/tempbucket/pkg/rest/client"
)

type showCmd struct {
	raw    bool
	output string
}

func (*showCmd) Name() string {
	return "show"
}

func (*showCmd) Synopsis() string {
	return "show a single message"
}

func (*showCmd) Usage() string {
	return `show [flags] <address> <id>:
	print the sender, subject, time and text of a message
`
}

func (s *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&s.raw, "raw", false, "print the upstream payload instead of the cleaned text")
	f.StringVar(&s.output, "output", "text", "output format: text or json")
}

func (s *showCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	address, id := f.Arg(0), f.Arg(1)
	if address == "" || id == "" {
		return usage("address and id required")
	}
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	msg, err := c.GetMessage(ctx, address, id)
	if err != nil {
		return fatal("REST call failed", err)
	}
	if s.output == "json" {
		return printJSON(msg)
	}
	fmt.Printf("From: %s\nSubject: %s\nTime: %s\n\n", msg.Sender, msg.Subject, msg.Timestamp)
	if s.raw {
		fmt.Println(msg.RawPayload)
	} else {
		fmt.Println(msg.CleanedText)
	}
	return subcommands.ExitSuccess
}
