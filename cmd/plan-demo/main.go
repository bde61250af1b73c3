// README: Command-line demo; plans one trip with the configured providers and prints it.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"wayfarer/internal/config"
	"wayfarer/internal/infra"
	"wayfarer/internal/modules/budget"
	"wayfarer/internal/modules/plan"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

func main() {
	app := &cli.App{
		Name:  "plan-demo",
		Usage: "Plan a trip from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"WAYFARER_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			planCommand(),
			budgetCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var tripFlags = []cli.Flag{
	&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Destination, e.g. \"Paris, France\"", Required: true},
	&cli.StringFlag{Name: "start", Usage: "First day (YYYY-MM-DD)", Required: true},
	&cli.StringFlag{Name: "end", Usage: "Last day (YYYY-MM-DD)", Required: true},
	&cli.Float64Flag{Name: "budget", Aliases: []string{"b"}, Usage: "Total budget", Required: true},
	&cli.IntFlag{Name: "travelers", Aliases: []string{"t"}, Value: 1, Usage: "Number of travelers"},
	&cli.StringSliceFlag{Name: "interest", Aliases: []string{"i"}, Usage: "Interest tag; repeatable"},
}

func tripRequest(c *cli.Context) (types.TripRequest, error) {
	return types.NewTripRequest(
		c.String("location"),
		c.String("start"),
		c.String("end"),
		c.Float64("budget"),
		c.Int("travelers"),
		c.StringSlice("interest"),
	)
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Run the full pipeline against live providers",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format (text, json, ics)"},
		}, tripFlags...),
		Action: func(c *cli.Context) error {
			req, err := tripRequest(c)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := infra.NewLogger("plan-demo", c.String("log-level"))

			planner, cleanup, err := service.NewFromConfig(c.Context, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := planner.PlanTrip(c.Context, req)
			if err != nil {
				return err
			}
			return render(p, c.String("format"))
		},
	}
}

func budgetCommand() *cli.Command {
	return &cli.Command{
		Name:  "budget",
		Usage: "Show the budget split without contacting any provider",
		Flags: tripFlags,
		Action: func(c *cli.Context) error {
			req, err := tripRequest(c)
			if err != nil {
				return err
			}
			bp, err := budget.Allocate(req)
			if err != nil {
				return err
			}
			fmt.Printf("Budget %s over %d day(s)\n", bp.Total.StringFixed(2), bp.Days)
			for _, cat := range budget.Categories {
				fmt.Printf("  %-14s %10s  (base %s)\n", cat, bp.Ceilings.Get(cat).StringFixed(2), bp.Base.Get(cat).StringFixed(2))
			}
			return nil
		},
	}
}

func render(p *plan.Plan, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "ics":
		_, err := os.Stdout.Write(plan.Calendar(p))
		return err
	case "text":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	fmt.Printf("Plan %s: %s\n", p.ID, p.Request.Location)
	fmt.Printf("Places: %s, hotels: %s\n\n", p.Provenance.Places, p.Provenance.Hotels)
	for _, d := range p.Itinerary.Days {
		marker := ""
		if d.Degraded {
			marker = " (generated without the engine)"
		}
		fmt.Printf("%s%s\n", d.Date.Format(types.DateLayout), marker)
		for _, a := range d.Activities {
			fmt.Printf("  %s  %-40s %8.2f\n", a.Time, a.Title, a.EstimatedCost)
		}
	}
	fmt.Println("\nRecommended:")
	for _, r := range p.Recommendations.Items {
		fmt.Printf("  %d. %s - %s\n", r.Rank, r.Name, r.Rationale)
	}
	if len(p.Caveats) > 0 {
		fmt.Println("\nNotes:")
		for _, cv := range p.Caveats {
			fmt.Println("  - " + cv)
		}
	}
	fmt.Printf("\nEstimated total %.2f of %s\n%s\n", p.TotalEstimatedCost, p.Budget.Total.StringFixed(2), strings.TrimSpace(p.Summary))
	return nil
}
