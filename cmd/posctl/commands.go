package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vladislavdragonenkov/laundry-pos/internal/app"
	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/export"
	"github.com/vladislavdragonenkov/laundry-pos/internal/httpapi"
	"github.com/vladislavdragonenkov/laundry-pos/internal/receipt"
	"github.com/vladislavdragonenkov/laundry-pos/internal/version"
)

type dependencyLoader func(ctx context.Context) (*app.Dependencies, error)

func newApp(out io.Writer, load dependencyLoader) *cli.App {
	withDeps := func(action func(*cli.Context, *app.Dependencies) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			c.Context = ctx

			deps, err := load(ctx)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			defer func() { _ = deps.Close(context.Background()) }()
			return action(c, deps)
		}
	}

	return &cli.App{
		Name:    "posctl",
		Usage:   "manage Vela Dry Wash orders from the terminal",
		Version: version.String(),
		Writer:  out,
		// Код выхода выставляет main: так команды можно прогонять в тестах.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "deadline for the whole command"},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list all orders with the grand total",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"}},
				Action: withDeps(listOrders),
			},
			{
				Name:      "get",
				Usage:     "print one order as JSON",
				ArgsUsage: "<order-id>",
				Action:    withDeps(getOrder),
			},
			{
				Name:      "delete",
				Usage:     "delete one order (absent id is not an error)",
				ArgsUsage: "<order-id>",
				Action:    withDeps(deleteOrder),
			},
			{
				Name:   "purge",
				Usage:  "delete every order one by one",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "confirm deletion of all orders"}},
				Action: withDeps(purgeOrders),
			},
			{
				Name:   "next-id",
				Usage:  "print the suggested id for a new order",
				Action: withDeps(nextOrderID),
			},
			{
				Name:      "receipt",
				Usage:     "render the 80mm receipt of an order",
				ArgsUsage: "<order-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "text", Usage: "text|pdf"},
					&cli.StringFlag{Name: "out", Usage: "output file (pdf default: receipt_<id>.pdf)"},
				},
				Action: withDeps(renderReceipt),
			},
			{
				Name:  "export",
				Usage: "export all orders to a spreadsheet or PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: export.FormatXLSX, Usage: "xlsx|pdf"},
					&cli.StringFlag{Name: "out", Usage: "output file (default: orders_export_<date>.<ext>)"},
				},
				Action: withDeps(exportOrders),
			},
			{
				Name:  "archive",
				Usage: "upload today's xlsx export to the object store",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "link-ttl", Value: 24 * time.Hour, Usage: "lifetime of the download link"},
				},
				Action: withDeps(archiveExport),
			},
		},
	}
}

func requireID(c *cli.Context) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", cli.Exit("order id is required", 2)
	}
	return id, nil
}

func listOrders(c *cli.Context, deps *app.Dependencies) error {
	listing, err := deps.Service.ListOrders(c.Context)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		views := make([]httpapi.OrderView, 0, len(listing.Orders))
		for _, order := range listing.Orders {
			views = append(views, httpapi.NewOrderView(order))
		}
		return writeJSON(c.App.Writer, views)
	}

	loc := deps.Config.Location()
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ORDER\tCUSTOMER\tITEMS\tTOTAL\tDATE")
	for _, row := range export.Rows(listing.Orders, loc, domain.RupeeSymbol) {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", row.OrderNumber, row.Customer, row.Items, row.Total, row.Date)
	}
	_, _ = fmt.Fprintf(tw, "\t\t%d orders\t%s\t\n", listing.Count, domain.FormatINR(listing.GrandTotal))
	return tw.Flush()
}

func getOrder(c *cli.Context, deps *app.Dependencies) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	order, err := deps.Service.GetOrder(c.Context, id)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, httpapi.NewOrderView(order))
}

func deleteOrder(c *cli.Context, deps *app.Dependencies) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if err := deps.Service.DeleteOrder(c.Context, id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
	return err
}

func purgeOrders(c *cli.Context, deps *app.Dependencies) error {
	if !c.Bool("yes") {
		return cli.Exit("refusing to delete all orders without --yes", 2)
	}
	report, err := deps.Service.DeleteAllOrders(c.Context)
	_, _ = fmt.Fprintf(c.App.Writer, "deleted: %d\n", len(report.Deleted))
	if err != nil {
		_, _ = fmt.Fprintf(c.App.Writer, "remaining: %v\n", report.Remaining)
		return err
	}
	return nil
}

func nextOrderID(c *cli.Context, deps *app.Dependencies) error {
	id, err := deps.Service.NextOrderID(c.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, id)
	return err
}

func renderReceipt(c *cli.Context, deps *app.Dependencies) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	order, err := deps.Service.GetOrder(c.Context, id)
	if err != nil {
		return err
	}

	profile, loc := receipt.DefaultProfile(), deps.Config.Location()
	switch c.String("format") {
	case "text":
		text := receipt.RenderText(order, profile, loc)
		if out := c.String("out"); out != "" {
			return os.WriteFile(out, []byte(text), 0o644)
		}
		_, err = io.WriteString(c.App.Writer, text)
		return err
	case "pdf":
		var buf bytes.Buffer
		if err := receipt.RenderPDF(&buf, order, profile, loc); err != nil {
			return err
		}
		out := c.String("out")
		if out == "" {
			out = "receipt_" + order.ID + ".pdf"
		}
		return writeFile(c.App.Writer, out, buf.Bytes())
	default:
		return cli.Exit(fmt.Sprintf("unsupported receipt format %q", c.String("format")), 2)
	}
}

func exportOrders(c *cli.Context, deps *app.Dependencies) error {
	format := c.String("format")
	write := export.WriteXLSX
	switch format {
	case export.FormatXLSX:
	case export.FormatPDF:
		write = export.WritePDF
	default:
		return cli.Exit(fmt.Sprintf("unsupported export format %q", format), 2)
	}

	listing, err := deps.Service.ListOrders(c.Context)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := write(&buf, listing.Orders, deps.Config.Location()); err != nil {
		return err
	}
	deps.OrderMetrics.RecordExport(format)

	out := c.String("out")
	if out == "" {
		out = export.FileName(format, deps.Service.Now())
	}
	return writeFile(c.App.Writer, out, buf.Bytes())
}

func archiveExport(c *cli.Context, deps *app.Dependencies) error {
	if deps.Archiver == nil {
		return cli.Exit("object store is not configured (POS_MINIO_ENDPOINT)", 2)
	}
	name, err := deps.Archiver.RunOnce(c.Context)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.App.Writer, "archived %s/%s\n", deps.Archive.Bucket(), name)

	link, err := deps.Archive.PresignedURL(c.Context, name, c.Duration("link-ttl"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, link)
	return err
}

func writeFile(out io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(data))
	return err
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
