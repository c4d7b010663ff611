package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hyperifyio/gopnl/internal/extract"
	"github.com/hyperifyio/gopnl/internal/fetch"
	"github.com/hyperifyio/gopnl/internal/money"
)

func main() {
	htmlPath := flag.String("html", "", "Saved wallet page")
	url := flag.String("url", "", "Wallet page URL")
	flag.Parse()

	var page []byte
	var err error
	switch {
	case *htmlPath != "":
		page, err = os.ReadFile(*htmlPath)
	case *url != "":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		c := &fetch.Client{MaxAttempts: 2, PerRequestTimeout: 20 * time.Second}
		page, _, err = c.Get(ctx, *url)
	default:
		fmt.Fprintln(os.Stderr, "usage: gopnl-explain -html PATH | -url URL")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "err:", err)
		os.Exit(2)
	}
	report(os.Stdout, string(page))
}

// report prints every strategy's candidate and marks the one the cascade picks.
func report(w io.Writer, html string) {
	res := extract.Extract(html, extract.Options{})
	outcomes := extract.Explain(html)
	winner := -1
	for i, o := range outcomes {
		if o.Matched && o.Value != nil {
			winner = i
			break
		}
	}
	for i, o := range outcomes {
		mark := " "
		if i == winner {
			mark = "*"
		}
		if !o.Matched {
			fmt.Fprintf(w, "%s %d. %-18s -\n", mark, i+1, o.Name)
			continue
		}
		value := "unparseable"
		if o.Value != nil {
			value = money.FormatUSD(*o.Value)
		}
		fmt.Fprintf(w, "%s %d. %-18s %s (%s) [%s]\n   %s\n", mark, i+1, o.Name, value, o.Candidate.Raw, o.Candidate.Strategy, o.Candidate.Context)
	}
	fmt.Fprintf(w, "result: %s\n", res.Strategy)
}
