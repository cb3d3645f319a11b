package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"fxwarehouse/service/db"
)

func listDealsCommand() *cli.Command {
	return &cli.Command{
		Name:    "list-deals",
		Usage:   "List all stored deals",
		Aliases: []string{"ls"},
		Action: func(c *cli.Context) error {
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			deals, err := store.ListDeals(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list deals: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(deals)
			}

			// Pretty table output
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEAL ID\tFROM\tTO\tTIMESTAMP\tAMOUNT\tCREATED")
			for _, d := range deals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					d.DealID,
					d.FromCurrency,
					d.ToCurrency,
					d.Timestamp.Format(time.RFC3339),
					d.Amount.StringFixed(2),
					d.CreatedAt.Format(time.RFC3339),
				)
			}
			w.Flush()

			fmt.Fprintf(os.Stderr, "\nTotal: %d deals\n", len(deals))
			return nil
		},
	}
}

func getDealCommand() *cli.Command {
	return &cli.Command{
		Name:      "get-deal",
		Usage:     "Get deal details",
		Aliases:   []string{"get"},
		ArgsUsage: "<dealId>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("requires exactly one argument: deal identifier")
			}

			dealID := c.Args().First()
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			d, err := store.GetDealByDealID(context.Background(), dealID)
			if err != nil {
				return fmt.Errorf("failed to get deal: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(d)
			}

			// Pretty output
			fmt.Printf("Deal ID:       %s\n", d.DealID)
			fmt.Printf("From Currency: %s\n", d.FromCurrency)
			fmt.Printf("To Currency:   %s\n", d.ToCurrency)
			fmt.Printf("Timestamp:     %s\n", d.Timestamp.Format(time.RFC3339))
			fmt.Printf("Amount:        %s\n", d.Amount.StringFixed(2))
			fmt.Printf("Created:       %s\n", d.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func countDealsCommand() *cli.Command {
	return &cli.Command{
		Name:  "count-deals",
		Usage: "Count all stored deals",
		Action: func(c *cli.Context) error {
			store, closer, err := getStore(c)
			if err != nil {
				return err
			}
			defer closer()

			count, err := store.CountDeals(context.Background())
			if err != nil {
				return fmt.Errorf("failed to count deals: %w", err)
			}

			if c.Bool("json") {
				return outputJSON(map[string]int64{"count": count})
			}

			fmt.Println(count)
			return nil
		},
	}
}

// getStore connects to the database and returns a store plus a closer.
func getStore(c *cli.Context) (*db.Store, func(), error) {
	dbURL := c.String("database-url")
	if dbURL == "" {
		return nil, nil, fmt.Errorf("database-url is required (flag or DATABASE_URL)")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db.NewStore(pool), pool.Close, nil
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
