package cmd

import (
	"fmt"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/pipeline"

	"github.com/spf13/cobra"
)

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "Transactions grouped by day with daily totals",
	RunE:  runDays,
}

func init() {
	rootCmd.AddCommand(daysCmd)
}

func runDays(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	result, err := loadLedger(cmd.Context(), client)
	if err != nil {
		return err
	}
	if len(result.Transactions) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}

	days, err := applyFilters(result)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("\n  No data for the selected filters.")
		return nil
	}

	cur := appCfg.Ledger.DefaultCurrency
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY LEDGER  %s", periodLabel())))
	fmt.Println()

	for _, d := range days {
		fmt.Println(cli.RenderDayHeader(d, cur))
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Time", "Description", "Category", "Account", "Amount"},
			Rows:    dayRows(d, cur),
		}))
		fmt.Println()
	}

	t := pipeline.Summarize(days)
	fmt.Printf("  %s days, %s transactions   Income %s   Expense %s   Net %s\n",
		cli.FormatNumber(int64(t.Days)),
		cli.FormatNumber(int64(t.Transactions)),
		cli.AmountStyle(model.Income).Render(cli.FormatIncome(cur, t.Income)),
		cli.AmountStyle(model.Expense).Render(cli.FormatExpense(cur, t.Expense)),
		cli.FormatNet(cur, t.Net),
	)
	return nil
}

func dayRows(d model.DayGroup, fallback string) [][]string {
	rows := make([][]string, 0, len(d.Transactions))
	for _, tx := range d.Transactions {
		rows = append(rows, []string{
			model.FormatClock(tx.Timestamp.Time),
			tx.Description,
			tx.Category.Name,
			tx.Account.Name,
			cli.FormatSigned(tx, fallback),
		})
	}
	return rows
}
