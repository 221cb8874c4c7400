package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
)

type serviceOpener func(ctx context.Context) (product.Service, func() error, error)

func newRootCmd(open serviceOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the drone catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newSeedCmd(open),
		newListCmd(open),
		newExportCmd(open),
	)
	return root
}

// withService opens the product service for one command run and closes it
// afterwards, keeping the first error.
func withService(cmd *cobra.Command, open serviceOpener, fn func(product.Service) error) (err error) {
	svc, closeFn, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeFn == nil {
			return
		}
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(svc)
}

func newSeedCmd(open serviceOpener) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create products from a YAML file, skipping names that already exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			inputs, err := product.ParseSeed(f)
			if err != nil {
				return err
			}
			return withService(cmd, open, func(svc product.Service) error {
				res, err := svc.Seed(cmd.Context(), inputs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newListCmd(open serviceOpener) *cobra.Command {
	var (
		search      string
		productType string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products using the storefront search and type filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, open, func(svc product.Service) error {
				all, err := svc.AllProducts(cmd.Context())
				if err != nil {
					return err
				}
				matched := catalog.Filter(toCatalog(all), search, productType)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(matched)
				}
				return printTable(cmd, matched)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&productType, "type", catalog.AllTypes, "product type, or All")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newExportCmd(open serviceOpener) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every product to an xlsx spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, open, func(svc product.Service) error {
				all, err := svc.AllProducts(cmd.Context())
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := product.WriteXLSX(f, all); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d products to %s\n", len(all), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "products.xlsx", "output file")
	return cmd
}

// toCatalog drops admin-only fields. Media is left unsigned; the CLI never
// hands out URLs.
func toCatalog(products []product.ProductDTO) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		out = append(out, catalog.Product{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Type:         p.Type,
			Price:        p.Price,
			AvailableFor: p.AvailableFor,
		})
	}
	return out
}

func printTable(cmd *cobra.Command, products []catalog.Product) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPRICE\tAVAILABLE FOR")
	for _, p := range products {
		modes := make([]string, 0, len(p.AvailableFor))
		for _, m := range p.AvailableFor {
			modes = append(modes, m.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Type, p.Price.StringFixed(2), strings.Join(modes, ","))
	}
	return tw.Flush()
}
