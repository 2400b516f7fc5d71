package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newShopsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shops",
		Short: "List shops known to the catalog",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := bootApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, a.Close())
			}()
			shops, err := a.catalog.ListShops(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), shops)
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := bootApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, a.Close())
			}()
			categories, err := a.catalog.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), categories)
		},
	}
}
