package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/spf13/cobra"
)

// NewCatalogCommand groups product maintenance commands. Running servers
// pick up changes on their next catalog refresh.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and edit the product catalog",
	}

	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogSetCommand(rootOpts))
	cmd.AddCommand(newCatalogDeleteCommand(rootOpts))

	return cmd
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List products in catalog order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, func(repo *catalog.Repository, cfg *config.Config) error {
				products, err := repo.List(commandContext(cmd))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), products)
				}
				for _, p := range products {
					printProduct(cmd.OutOrStdout(), p, cfg.Pricing.CurrencySymbol)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print products as JSON")
	return cmd
}

func newCatalogSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		p      domain.Product
		outOf  bool
		images []string
	)

	cmd := &cobra.Command{
		Use:   "set <product-id>",
		Short: "Create or replace a product",
		Example: `  storefront catalog set gd46g23h --name "Potato 500g" --category Vegetables \
    --price 25 --offer-price 20 --image potato_image_1.png`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.ID = args[0]
			p.InStock = !outOf
			p.Images = images
			if p.Images == nil {
				p.Images = []string{}
			}
			return withCatalog(rootOpts, func(repo *catalog.Repository, cfg *config.Config) error {
				if err := repo.Upsert(commandContext(cmd), p); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), "saved ")
				printProduct(cmd.OutOrStdout(), p, cfg.Pricing.CurrencySymbol)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "display name")
	cmd.Flags().StringVar(&p.Category, "category", "", "category")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "list price")
	cmd.Flags().Float64Var(&p.OfferPrice, "offer-price", 0, "selling price, at most the list price")
	cmd.Flags().BoolVar(&outOf, "out-of-stock", false, "mark the product as out of stock")
	cmd.Flags().StringSliceVar(&images, "image", nil, "image file name (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("offer-price")

	return cmd
}

func newCatalogDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <product-id>",
		Short:         "Remove a product",
		Long:          "Remove a product. Carts holding it keep the line; it is priced at zero until the product returns.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, func(repo *catalog.Repository, _ *config.Config) error {
				if err := repo.Delete(commandContext(cmd), args[0]); err != nil {
					return fmt.Errorf("delete %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func withCatalog(opts *RootOptions, fn func(*catalog.Repository, *config.Config) error) error {
	cfg, err := config.Load(opts.ConfigPath)
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
	return fn(repo, cfg)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printProduct(out io.Writer, p domain.Product, symbol string) {
	stock := "in stock"
	if !p.InStock {
		stock = "out of stock"
	}
	fmt.Fprintf(out, "%-10s %-24s %-12s %10s %10s  %s\n",
		p.ID, p.Name, p.Category,
		pricing.FormatMoney(symbol, p.OfferPrice),
		pricing.FormatMoney(symbol, p.Price),
		stock)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
