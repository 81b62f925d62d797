package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/tempbucket/tempbucket/pkg/rest/client"
)

type listCmd struct {
	output  string
	from    regexFlag
	subject regexFlag
}

func (*listCmd) Name() string {
	return "list"
}

func (*listCmd) Synopsis() string {
	return "list messages delivered to an address"
}

func (*listCmd) Usage() string {
	return `list [flags] <address>:
	list message IDs delivered to address
`
}

func (l *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&l.output, "output", "id", "output format: id or json")
	f.Var(&l.from, "from", "From matching regexp")
	f.Var(&l.subject, "subject", "Subject matching regexp")
}

func (l *listCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	address := f.Arg(0)
	if address == "" {
		return usage("address required")
	}
	if l.output != "id" && l.output != "json" {
		return usage("unknown output type: " + l.output)
	}

	// Setup rest client
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	// Get list
	messages, err := c.ListMessages(ctx, address)
	if err != nil {
		return fatal("REST call failed", err)
	}
	matches := make([]map[string]interface{}, 0, len(messages))
	for _, m := range messages {
		if l.match(m) {
			matches = append(matches, m)
		}
	}
	if l.output == "json" {
		return printJSON(matches)
	}
	for _, m := range matches {
		fmt.Println(field(m, "messageID"))
	}

	return subcommands.ExitSuccess
}

// match returns true if the summary matches all defined criteria.
func (l *listCmd) match(m map[string]interface{}) bool {
	if l.from.Defined() && !l.from.MatchString(field(m, "from")) {
		return false
	}
	if l.subject.Defined() && !l.subject.MatchString(field(m, "subject")) {
		return false
	}
	return true
}

// field returns the string value of key in a message summary, or "".
func field(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
