package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/caelus-deploy/caelus/services/admin/domain/models"
	domainsvcs "github.com/caelus-deploy/caelus/services/admin/domain/services"
)

func newProductsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage products",
	}

	var description string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a product without templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			p, err := svcs.Registry.CreateProduct(ctx, args[0], desc)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(p)
			}
			fmt.Fprintf(opts.out, "created product %d (%s)\n", p.ID, p.Name)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "product description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List products and their canonical template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			products, err := svcs.Registry.Products(ctx)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(products)
			}
			return printProducts(opts, products)
		},
	}

	get := &cobra.Command{
		Use:   "get PRODUCT_ID",
		Short: "Show a product and its canonical template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("PRODUCT_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svcs.Registry.Product(ctx, productID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(p)
			}
			return printProducts(opts, []models.Product{*p})
		},
	}

	del := &cobra.Command{
		Use:   "delete PRODUCT_ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("PRODUCT_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svcs.Registry.DeleteProduct(ctx, productID); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "deleted product %d\n", productID)
			return nil
		},
	}

	cmd.AddCommand(list, get, create, del)
	return cmd
}

func printProducts(opts *rootOptions, products []models.Product) error {
	tw := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCANONICAL")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, domainsvcs.PointerOf(p.TemplateID))
	}
	return tw.Flush()
}

func newTemplatesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage template versions of a product",
	}

	list := &cobra.Command{
		Use:   "list PRODUCT_ID",
		Short: "List templates, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("PRODUCT_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			product, err := svcs.Registry.Product(ctx, productID)
			if err != nil {
				return err
			}
			templates, err := svcs.Registry.ListTemplatesNewestFirst(ctx, productID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(templates)
			}
			return printTemplates(opts, domainsvcs.PointerOf(product.TemplateID), templates)
		},
	}

	var image string
	create := &cobra.Command{
		Use:   "create PRODUCT_ID",
		Short: "Create a template; the first one becomes canonical",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("PRODUCT_ID", args[0])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			var ref *string
			if cmd.Flags().Changed("image") {
				ref = &image
			}
			res, err := svcs.Reconciler.CreateTemplate(ctx, productID, ref)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(res)
			}
			fmt.Fprintf(opts.out, "created template %d for product %d\n", res.Template.ID, productID)
			if res.Promoted {
				fmt.Fprintf(opts.out, "template %d is now canonical\n", res.Template.ID)
			}
			return nil
		},
	}
	create.Flags().StringVar(&image, "image", "", "container image reference")

	del := &cobra.Command{
		Use:   "delete PRODUCT_ID TEMPLATE_ID",
		Short: "Delete a template; a deleted canonical template is replaced by the newest one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("PRODUCT_ID", args[0])
			if err != nil {
				return err
			}
			templateID, err := parseID("TEMPLATE_ID", args[1])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svcs.Reconciler.DeleteTemplate(ctx, productID, templateID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(res)
			}
			fmt.Fprintf(opts.out, "deleted template %d of product %d\n", templateID, productID)
			if res.Decision.Changed {
				fmt.Fprintf(opts.out, "canonical: %s (%s)\n", res.Decision.Next, res.Decision.Reason)
			}
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}

func newCanonicalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canonical",
		Short: "Manage the canonical template of a product",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set PRODUCT_ID TEMPLATE_ID",
		Short: "Make a template canonical",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("PRODUCT_ID", args[0])
			if err != nil {
				return err
			}
			templateID, err := parseID("TEMPLATE_ID", args[1])
			if err != nil {
				return err
			}
			ctx, svcs, err := opts.services(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svcs.Reconciler.SetCanonical(ctx, productID, templateID)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return opts.printJSON(p)
			}
			fmt.Fprintf(opts.out, "product %d canonical: %s\n", p.ID, domainsvcs.PointerOf(p.TemplateID))
			return nil
		},
	})
	return cmd
}

func printTemplates(opts *rootOptions, canonical domainsvcs.Pointer, templates []models.Template) error {
	tw := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tIMAGE\tCREATED\tCANONICAL")
	for _, t := range templates {
		image := "-"
		if t.ImageRef != nil {
			image = *t.ImageRef
		}
		mark := ""
		if canonical.Is(t.ID) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, image, t.CreatedAt.Format(time.RFC3339), mark)
	}
	return tw.Flush()
}
