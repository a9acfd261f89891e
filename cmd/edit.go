package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/ledgr/internal/cli"
	"github.com/theirongolddev/ledgr/internal/edit"
	"github.com/theirongolddev/ledgr/internal/ledgerapi"
	"github.com/theirongolddev/ledgr/internal/logger"
	"github.com/theirongolddev/ledgr/internal/model"
)

var flagDeleteYes bool

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a transaction",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a transaction",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Skip the confirmation")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	s := edit.New(time.Now, appCfg.Ledger.DefaultCurrency)
	return editAndSave(cmd.Context(), client, s, s.OpenCreate())
}

func runEdit(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	tx, err := findTransaction(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	s := edit.New(time.Now, appCfg.Ledger.DefaultCurrency)
	return editAndSave(cmd.Context(), client, s, s.OpenEdit(tx))
}

func editAndSave(ctx context.Context, client *ledgerapi.Client, s *edit.Session, fetches []edit.Fetch) error {
	tx, err := fillSession(ctx, client, s, fetches)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	saved, saveErr := client.Save(ctx, tx)
	_ = s.Complete(saveErr)
	if saveErr != nil {
		return fmt.Errorf("saving transaction: %w", saveErr)
	}

	fmt.Printf("  Saved %s  %s\n", saved.Description, cli.FormatSigned(saved, appCfg.Ledger.DefaultCurrency))
	if saved.ID != "" {
		fmt.Printf("  ID: %s\n", saved.ID)
	}
	return nil
}

// txFormValues are the free-text answers of the first form.
type txFormValues struct {
	Type        model.TxType
	Description string
	Amount      string
	Date        string
	Time        string
}

// fillSession runs the form against s and returns the submitted record. The
// opening lookups load concurrently while the details are being typed;
// changing the type refetches the categories before they are offered.
func fillSession(ctx context.Context, client *ledgerapi.Client, s *edit.Session, fetches []edit.Fetch) (model.Transaction, error) {
	log := logger.FromContext(ctx)

	results := make([]edit.Result, len(fetches))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetches {
		g.Go(func() error {
			results[i] = client.Lookup(gctx, f)
			return nil
		})
	}

	snap := s.Snapshot()
	vals := txFormValues{
		Type:        snap.Record.Type,
		Description: snap.Record.Description,
		Amount:      snap.AmountText,
		Date:        snap.DateText,
		Time:        snap.TimeText,
	}
	title := "New transaction"
	if !snap.Creating {
		title = "Edit transaction #" + snap.Record.ID
	}

	details := huh.NewForm(huh.NewGroup(
		huh.NewSelect[model.TxType]().
			Title("Type").
			Options(huh.NewOption("Expense", model.Expense), huh.NewOption("Income", model.Income)).
			Value(&vals.Type),
		huh.NewInput().Title("Description").Value(&vals.Description).Validate(requireText("a description")),
		huh.NewInput().Title("Amount").Placeholder("0.00").Value(&vals.Amount).Validate(validateAmount),
		huh.NewInput().Title("Date").Placeholder("2006-01-02").Value(&vals.Date).Validate(validateDate),
		huh.NewInput().Title("Time").Placeholder("15:04").Value(&vals.Time).Validate(validateClock),
	).Title(title))

	runErr := details.RunWithContext(ctx)
	_ = g.Wait()
	for _, r := range results {
		if s.Resolve(r) && r.Err != nil {
			log.Warn().Err(r.Err).Stringer("kind", r.Fetch.Kind).Msg("lookup failed")
		}
	}
	if runErr != nil {
		s.Cancel()
		return model.Transaction{}, runErr
	}

	if err := errors.Join(
		s.SetDescription(vals.Description),
		s.SetAmountText(vals.Amount),
		s.SetDateText(vals.Date),
		s.SetTimeText(vals.Time),
	); err != nil {
		s.Cancel()
		return model.Transaction{}, err
	}
	if f, ok := s.SetType(vals.Type); ok {
		s.Resolve(client.Lookup(ctx, f))
	}

	snap = s.Snapshot()
	if snap.CategoriesFailed || snap.AccountsFailed {
		s.Cancel()
		return model.Transaction{}, errors.New("could not load accounts or categories from the API")
	}
	if len(snap.Categories) == 0 {
		s.Cancel()
		return model.Transaction{}, fmt.Errorf("no %s categories available", vals.Type)
	}
	if len(snap.Accounts) == 0 {
		s.Cancel()
		return model.Transaction{}, errors.New("no accounts available")
	}

	catOpts := make([]huh.Option[string], len(snap.Categories))
	for i, c := range snap.Categories {
		catOpts[i] = huh.NewOption(c.Name, c.ID)
	}
	acctOpts := make([]huh.Option[string], len(snap.Accounts))
	for i, a := range snap.Accounts {
		acctOpts[i] = huh.NewOption(a.Name, a.ID)
	}
	catID, acctID := snap.Record.Category.ID, snap.Record.Account.ID

	pick := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(vals.Type.Label()+" category").Options(catOpts...).Value(&catID),
		huh.NewSelect[string]().Title("Account").Options(acctOpts...).Value(&acctID),
	))
	if err := pick.RunWithContext(ctx); err != nil {
		s.Cancel()
		return model.Transaction{}, err
	}
	s.SelectCategory(catID)
	s.SelectAccount(acctID)

	tx, err := s.Submit()
	if err != nil {
		s.Cancel()
		return model.Transaction{}, err
	}
	return tx, nil
}

func requireText(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("enter %s", what)
		}
		return nil
	}
}

func validateAmount(s string) error {
	m, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !m.IsPositive() {
		return errors.New("enter a positive amount such as 12.50")
	}
	return nil
}

func validateDate(s string) error {
	if _, err := civil.ParseDate(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a date as YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := model.ParseClock(s); err != nil {
		return errors.New("enter a time as HH:MM")
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	tx, err := findTransaction(ctx, client, args[0])
	if err != nil {
		return err
	}

	cur := appCfg.Ledger.DefaultCurrency
	if !flagDeleteYes {
		confirmed := false
		err := huh.NewForm(huh.NewGroup(huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", tx.Description)).
			Description(cli.FormatSigned(tx, cur) + " on " + cli.FormatLongDate(tx.Date())).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed),
		)).RunWithContext(ctx)
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !confirmed {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	if err := client.Delete(ctx, tx.ID); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	fmt.Printf("  Deleted %s  %s\n", tx.Description, cli.FormatSigned(tx, cur))
	return nil
}
