package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/ledgerapi"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"
	"github.com/theirongolddev/ledgr/internal/tabular"

	"github.com/spf13/cobra"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx", "ls"},
	Short:   "Flat transaction list",
	RunE:    runTransactions,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Transaction details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

// errTxNotFound is returned when an id is not in the ledger.
var errTxNotFound = errors.New("transaction not found")

func init() {
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(showCmd)
}

func transactionColumns() []tabular.Column[model.Transaction] {
	cur := appCfg.Ledger.DefaultCurrency
	return []tabular.Column[model.Transaction]{
		{Key: "date", Label: "Date"},
		{Key: "time", Label: "Time"},
		{Key: "description", Label: "Description"},
		{Key: "category", Label: "Category"},
		{Key: "account", Label: "Account"},
		{Key: "amount", Label: "Amount", Align: tabular.AlignRight, Cell: tabular.Custom(func(tx model.Transaction) string {
			return cli.FormatSigned(tx, cur)
		})},
		{Key: "id", Label: "ID", Align: tabular.AlignRight},
	}
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), client)
	if err != nil {
		return err
	}
	days, err := applyFilters(result)
	if err != nil {
		return err
	}

	v := tabular.Build(transactionColumns(), pipeline.Flatten(days),
		func(tx model.Transaction) string { return tx.ID }, nil)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRANSACTIONS  %s", periodLabel())))
	fmt.Println()
	fmt.Print(cli.RenderView("", v, "No transactions found"))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	tx, err := findTransaction(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(cli.RenderDetail(tx, appCfg.Ledger.DefaultCurrency))
	fmt.Println()
	return nil
}

// findTransaction looks id up in the flat list; the API has no single-record
// endpoint.
func findTransaction(ctx context.Context, client *ledgerapi.Client, id string) (model.Transaction, error) {
	txs, err := client.Transactions(ctx)
	if err != nil {
		return model.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return model.Transaction{}, fmt.Errorf("%w: %s", errTxNotFound, id)
}
