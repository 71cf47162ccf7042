package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/restkit/dummyjson"
	"github.com/s0up4200/restkit/filter"
)

// productsCmd represents the products command
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Query products and categories",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, optionally narrowed by a filter expression",
	Example: `  restkit products list --sort-by price --order desc
  restkit products list -f 'price < 20 && hasTag("beauty")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.Products.List(cmd.Context(), listOptions())
		if err != nil {
			return err
		}
		return printFilteredProducts(cmd, page)
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		product, err := client.Products.Get(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(product)
		}
		return printProducts([]dummyjson.Product{*product}, nil)
	},
}

var productsGetManyCmd = &cobra.Command{
	Use:   "get-many <id>...",
	Short: "Fetch several products concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		result, err := client.Products.GetMany(cmd.Context(), ids)
		if err != nil {
			return err
		}

		products := make([]dummyjson.Product, 0, len(result.Found))
		for _, p := range result.Found {
			products = append(products, *p)
		}
		if err := printProducts(products, nil); err != nil {
			return err
		}
		for _, failed := range result.Failed {
			fmt.Printf("✗ %v\n", failed)
		}
		return nil
	},
}

var productsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search products by title and description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.Products.Search(cmd.Context(), strings.Join(args, " "), listOptions())
		if err != nil {
			return err
		}
		return printFilteredProducts(cmd, page)
	},
}

var productsCategoryCmd = &cobra.Command{
	Use:     "category <slug>",
	Short:   "List the products of one category",
	Example: `  restkit products category smartphones`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.Products.ByCategory(cmd.Context(), args[0], listOptions())
		if err != nil {
			return err
		}
		return printFilteredProducts(cmd, page)
	},
}

var productsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := client.Products.Categories(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(categories)
		}

		fmt.Printf("Found %d %s:\n", len(categories), plural(len(categories), "category"))
		for _, c := range categories {
			if c.Name != "" && c.Name != c.Slug {
				fmt.Printf("  • %s (%s)\n", c.Slug, c.Name)
				continue
			}
			fmt.Printf("  • %s\n", c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsGetCmd, productsGetManyCmd, productsSearchCmd,
		productsCategoryCmd, productsCategoriesCmd)

	for _, c := range []*cobra.Command{productsListCmd, productsSearchCmd, productsCategoryCmd} {
		addListFlags(c)
		addFilterFlags(c)
	}
}

func printFilteredProducts(cmd *cobra.Command, page *dummyjson.ProductsPage) error {
	f, err := getFilter()
	if err != nil {
		return err
	}
	if f == nil {
		return printProducts(page.Products, &page.Pagination)
	}

	logger.Info().Str("filter", f.Expression()).Int("products", len(page.Products)).Msg("Applying filter")
	products, err := filter.ApplyConcurrent(cmd.Context(), f, page.Products)
	if err != nil {
		return err
	}
	return printProducts(products, nil)
}
