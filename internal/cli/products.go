package cli

import (
	"context"
	"fmt"

	"github.com/mfaulhaber/catalogd/internal/client"
	"github.com/spf13/cobra"
)

var (
	productsOffset      int
	productsLimit       int
	productsSearch      string
	productDescription  string
	productInactive     bool
	productsClearForced bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse and manage the product catalog",
	Long: `Browse and manage the product catalog.

Subcommands:
  list    List products (default)
  create  Create or update a single product
  clear   Delete all products

Examples:
  catalogctl products
  catalogctl products --search widget
  catalogctl products create sku-1 "Blue Widget" --description "A widget"
  catalogctl products clear --yes`,
	RunE: runListProducts,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE:  runListProducts,
}

var productsCreateCmd = &cobra.Command{
	Use:   "create <sku> <name>",
	Short: "Create or update a single product",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreateProduct,
}

var productsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all products",
	RunE:  runClearProducts,
}

func init() {
	for _, cmd := range []*cobra.Command{productsCmd, productsListCmd} {
		cmd.Flags().IntVar(&productsOffset, "offset", 0, "pagination offset")
		cmd.Flags().IntVarP(&productsLimit, "limit", "n", 50, "max results")
		cmd.Flags().StringVar(&productsSearch, "search", "", "case-insensitive search on sku and name")
	}

	productsCreateCmd.Flags().StringVarP(&productDescription, "description", "d", "", "product description")
	productsCreateCmd.Flags().BoolVar(&productInactive, "inactive", false, "mark the product inactive")

	productsClearCmd.Flags().BoolVarP(&productsClearForced, "yes", "y", false, "skip confirmation")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsCreateCmd)
	productsCmd.AddCommand(productsClearCmd)
}

func runListProducts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	products, err := apiClient.ListProducts(ctx, client.ListProductsOptions{
		Offset: productsOffset,
		Limit:  productsLimit,
		Search: productsSearch,
	})
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	fmt.Printf("Products (%d):\n\n", len(products))
	for _, p := range products {
		activeMark := ""
		if !p.IsActive {
			activeMark = " [inactive]"
		}
		fmt.Printf("- %s: %s%s\n", p.SKU, p.Name, activeMark)
		if verbose && p.Description != nil && *p.Description != "" {
			fmt.Printf("  %s\n", *p.Description)
		}
	}

	return nil
}

func runCreateProduct(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	input := client.CreateProductInput{
		SKU:  args[0],
		Name: args[1],
	}
	if productDescription != "" {
		input.Description = &productDescription
	}
	if productInactive {
		active := false
		input.IsActive = &active
	}

	product, err := apiClient.CreateProduct(ctx, input)
	if err != nil {
		return err
	}

	fmt.Printf("Saved product %s: %s\n", product.SKU, product.Name)
	return nil
}

func runClearProducts(cmd *cobra.Command, args []string) error {
	if !productsClearForced {
		fmt.Print("Delete ALL products? This cannot be undone. Type 'yes' to confirm: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := apiClient.DeleteAllProducts(context.Background()); err != nil {
		return err
	}

	fmt.Println("All products deleted.")
	return nil
}
