package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/spf13/cobra"
)

// QuoteOptions holds flags for the quote command.
type QuoteOptions struct {
	*RootOptions
	JSON bool
}

// NewQuoteCommand prices a stored cart payload against the catalog.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quote <cart.json>",
		Short: "Price a cart file against the catalog",
		Long: `Price a cart file against the catalog.

The file holds a stored cart, {"productId": quantity}; the older
{"productId": {"quantity": n}} shape is accepted too.

Example:
  storefront quote cart.json --json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return quote(commandContext(cmd), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the pricing snapshot as JSON")

	return cmd
}

func quote(ctx context.Context, opts *QuoteOptions, path string, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cart file: %w", err)
	}
	state, err := persistence.Decode(data)
	if err != nil {
		return err
	}

	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.RunMigrations(); err != nil {
		return err
	}
	products, err := repo.List(ctx)
	if err != nil {
		return err
	}

	snap := pricing.Evaluate(state, domain.NewCatalog(products), cfg.Pricing)
	if opts.JSON {
		return writeJSON(out, snap)
	}
	printQuote(out, snap, cfg.Pricing.CurrencySymbol)
	return nil
}

func printQuote(out io.Writer, snap domain.PricingSnapshot, symbol string) {
	for _, line := range snap.Lines {
		if !line.Resolved {
			fmt.Fprintf(out, "  %-24s x%-3d (not in catalog)\n", line.ProductID, line.Quantity)
			continue
		}
		fmt.Fprintf(out, "  %-24s x%-3d %10s\n", line.Name, line.Quantity, pricing.FormatMoney(symbol, line.LineTotal))
	}
	fmt.Fprintf(out, "Items:     %d\n", snap.ItemCount)
	fmt.Fprintf(out, "Subtotal:  %s\n", pricing.FormatMoney(symbol, snap.Subtotal))
	fmt.Fprintf(out, "Delivery:  %s\n", pricing.FormatMoney(symbol, snap.DeliveryFee))
	fmt.Fprintf(out, "Total:     %s\n", pricing.FormatMoney(symbol, snap.Total))
	if snap.FreeDeliveryEligible {
		fmt.Fprintln(out, "Free delivery unlocked")
	} else {
		fmt.Fprintf(out, "Add %s more for free delivery\n", pricing.FormatMoney(symbol, snap.AmountForFreeDelivery))
	}
}
