package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"fxwarehouse/client"
)

func clientCommands() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "HTTP API client commands",
		Subcommands: []*cli.Command{
			importCommand(),
			clientListCommand(),
			clientGetCommand(),
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Upload a CSV file of deals",
		ArgsUsage: "<file.csv>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: path to CSV file")
			}

			cl := getClient(c)
			report, err := cl.ImportFile(context.Background(), c.Args().First())
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(report)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEAL ID\tSTATUS\tMESSAGE")
			var success, failure, duplicate int
			for _, res := range report.Results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", res.DealID, res.Status, res.Message)
				switch res.Status {
				case "SUCCESS":
					success++
				case "FAILURE":
					failure++
				case "DUPLICATE":
					duplicate++
				}
			}
			w.Flush()

			fmt.Fprintf(os.Stderr, "\nImport %s: %d success, %d failure, %d duplicate\n",
				report.ImportID, success, failure, duplicate)
			return nil
		},
	}
}

func clientListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all stored deals via the API",
		Action: func(c *cli.Context) error {
			cl := getClient(c)
			deals, err := cl.ListDeals(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list deals: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(deals)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEAL ID\tFROM\tTO\tTIMESTAMP\tAMOUNT")
			for _, d := range deals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.DealID, d.FromCurrency, d.ToCurrency, d.Timestamp, d.Amount)
			}
			w.Flush()

			fmt.Fprintf(os.Stderr, "\nTotal: %d deals\n", len(deals))
			return nil
		},
	}
}

func clientGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get one deal via the API",
		ArgsUsage: "<dealId>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: deal identifier")
			}

			cl := getClient(c)
			d, err := cl.GetDeal(context.Background(), c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to get deal: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(d)
			}

			fmt.Printf("Deal ID:       %s\n", d.DealID)
			fmt.Printf("From Currency: %s\n", d.FromCurrency)
			fmt.Printf("To Currency:   %s\n", d.ToCurrency)
			fmt.Printf("Timestamp:     %s\n", d.Timestamp)
			fmt.Printf("Amount:        %s\n", d.Amount)
			return nil
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Action: func(c *cli.Context) error {
			cl := getClient(c)
			if err := cl.Health(context.Background()); err != nil {
				return fmt.Errorf("server unhealthy: %w", err)
			}
			fmt.Println("OK")
			return nil
		},
	}
}

func getClient(c *cli.Context) *client.Client {
	return client.NewClient(c.String("server-url"), nil, nil)
}
