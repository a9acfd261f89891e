package cmd

import (
	"fmt"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/tabular"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Account list",
	RunE:  runAccounts,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Category list (narrow with --type)",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	accounts, err := client.Accounts(cmd.Context())
	if err != nil {
		return err
	}

	v := tabular.Build([]tabular.Column[model.Account]{
		{Key: "id", Label: "ID", Align: tabular.AlignRight},
		{Key: "name", Label: "Name"},
		{Key: "group", Label: "Account Group"},
		{Key: "user", Label: "User ID"},
	}, accounts, func(a model.Account) string { return a.ID }, nil)

	fmt.Println()
	fmt.Print(cli.RenderView("Accounts", v, "No accounts found"))
	return nil
}

func runCategories(cmd *cobra.Command, _ []string) error {
	var typ model.TxType
	if flagType != "" {
		t, err := model.ParseTxType(flagType)
		if err != nil {
			return err
		}
		typ = t
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	cats, err := client.Categories(cmd.Context(), typ)
	if err != nil {
		return err
	}

	v := tabular.Build([]tabular.Column[model.Category]{
		{Key: "id", Label: "ID", Align: tabular.AlignRight},
		{Key: "name", Label: "Name"},
		{Key: "type", Label: "Type", Cell: tabular.Custom(func(c model.Category) string {
			if c.Type == "" {
				return "any"
			}
			return c.Type.Label()
		})},
	}, cats, func(c model.Category) string { return string(c.Type) + "/" + c.ID }, nil)

	title := "Categories"
	if typ != "" {
		title += " (" + typ.Label() + ")"
	}
	fmt.Println()
	fmt.Print(cli.RenderView(title, v, "No categories found"))
	return nil
}
