// debate CLI - Command line client for the debate-settled chat
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/burakorkmez/debate-settled/clients/go/debate"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("DEBATE_URL")
	client := debate.NewClient(baseURL)
	ctx := context.Background()
	cmd := os.Args[1]

	switch cmd {
	case "read":
		side, ok := parseSide(os.Args[2:])
		if !ok {
			fmt.Fprintln(os.Stderr, "Usage: debate read <prisma|drizzle>")
			os.Exit(1)
		}

		feed := debate.NewFeed(side)
		page, err := client.ListMessages(ctx, side, "", 20)
		exitOnError(err)
		feed.ApplyPage(page, false)

		printFeed(feed)
		if feed.HasMore() {
			fmt.Printf("(older messages available: debate more %s %s)\n", side, feed.Cursor())
		}

	case "more":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: debate more <prisma|drizzle> <cursor>")
			os.Exit(1)
		}
		side, ok := parseSide(os.Args[2:])
		if !ok {
			fmt.Fprintln(os.Stderr, "Usage: debate more <prisma|drizzle> <cursor>")
			os.Exit(1)
		}

		page, err := client.ListMessages(ctx, side, os.Args[3], 20)
		exitOnError(err)

		feed := debate.NewFeed(side)
		feed.ApplyPage(page, false)
		printFeed(feed)
		if feed.HasMore() {
			fmt.Printf("(older messages available: debate more %s %s)\n", side, feed.Cursor())
		}

	case "send":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: debate send <prisma|drizzle> <text>")
			os.Exit(1)
		}
		side, ok := parseSide(os.Args[2:])
		if !ok {
			fmt.Fprintln(os.Stderr, "Usage: debate send <prisma|drizzle> <text>")
			os.Exit(1)
		}

		feed := debate.NewFeed(side)
		feed.SetDraft(strings.Join(os.Args[3:], " "))

		coordinator := debate.NewCoordinator(client, debate.NewIPResolver())
		if err := coordinator.Submit(ctx, feed); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		for _, msg := range feed.Snapshot() {
			if !msg.Pending() {
				fmt.Printf("sent %s\n", msg.ID)
			}
		}

	case "supporters":
		counts, err := client.Supporters(ctx)
		exitOnError(err)
		fmt.Printf("prisma:  %d\ndrizzle: %d\n", counts.Prisma, counts.Drizzle)

	default:
		usage()
		os.Exit(1)
	}
}

func parseSide(args []string) (debate.Side, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch strings.ToLower(args[0]) {
	case "prisma":
		return debate.SidePrisma, true
	case "drizzle":
		return debate.SideDrizzle, true
	}
	return "", false
}

func printFeed(feed *debate.Feed) {
	for _, msg := range feed.Snapshot() {
		ts := time.UnixMilli(msg.CreationTime).Format("2006-01-02 15:04:05")
		fmt.Printf("[%s] %s: %s\n", ts, msg.Sender, msg.Text)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`debate - prisma vs drizzle chat client

Usage:
  debate read <prisma|drizzle>            Show the newest messages
  debate more <prisma|drizzle> <cursor>   Show an older page
  debate send <prisma|drizzle> <text>     Post a message
  debate supporters                       Show per-side message totals

Environment:
  DEBATE_URL   API base URL (default http://localhost:8080)`)
}
