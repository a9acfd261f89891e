package tui

import (
	"github.com/theirongolddev/ledgr/internal/model"
	"github.com/theirongolddev/ledgr/internal/tabular"
)

// actionTransactions jumps to the transactions tab filtered by the row.
var actionTransactions = tabular.Action{ID: "transactions", Label: "↵ transactions"}

func rowActions[T tabular.Record](T) []tabular.Action {
	return []tabular.Action{actionTransactions}
}

func accountColumns() []tabular.Column[model.Account] {
	return []tabular.Column[model.Account]{
		{Key: "name", Label: "Name"},
		{Key: "group", Label: "Account Group"},
		{Key: "user", Label: "User ID"},
	}
}

func categoryColumns() []tabular.Column[model.Category] {
	return []tabular.Column[model.Category]{
		{Key: "name", Label: "Name"},
		{Key: "type", Label: "Type", Cell: tabular.Custom(func(c model.Category) string {
			if c.Type == "" {
				return "any"
			}
			return c.Type.Label()
		})},
		{Key: "id", Label: "ID", Align: tabular.AlignRight},
	}
}

func (a App) accountsView() tabular.View[model.Account] {
	return tabular.Build(accountColumns(), a.accounts,
		func(acc model.Account) string { return acc.ID },
		rowActions[model.Account])
}

func (a App) categoriesView() tabular.View[model.Category] {
	return tabular.Build(categoryColumns(), a.categories,
		func(c model.Category) string { return string(c.Type) + "/" + c.ID },
		rowActions[model.Category])
}

func (a App) listLen(tab int) int {
	switch tab {
	case tabAccounts:
		return len(a.accounts)
	case tabCategories:
		return len(a.categories)
	}
	return 0
}

func (a *App) updateListKey(tab int, key string) bool {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.lists[tab] = 0
	case "G":
		a.lists[tab] = clamp(a.listLen(tab)-1, a.listLen(tab))
	default:
		return false
	}
	return true
}

func (a *App) updateAccountsKey(key string) bool {
	if key != "enter" {
		return a.updateListKey(tabAccounts, key)
	}
	v := a.accountsView()
	if i := a.lists[tabAccounts]; i < len(v.Rows) {
		if acc, _, ok := v.Invoke(v.Rows[i].Key, actionTransactions.ID); ok {
			a.showTransactionsFor(Filters{Account: acc.ID})
			a.flash("Account: " + acc.Name)
		}
	}
	return true
}

func (a *App) updateCategoriesKey(key string) bool {
	if key != "enter" {
		return a.updateListKey(tabCategories, key)
	}
	v := a.categoriesView()
	if i := a.lists[tabCategories]; i < len(v.Rows) {
		if cat, _, ok := v.Invoke(v.Rows[i].Key, actionTransactions.ID); ok {
			a.showTransactionsFor(Filters{Category: cat.ID})
			a.flash("Category: " + cat.Name)
		}
	}
	return true
}

// showTransactionsFor replaces the account and category filters and switches
// to the transactions tab.
func (a *App) showTransactionsFor(f Filters) {
	a.filters.Account = f.Account
	a.filters.Category = f.Category
	a.tx.cursor = 0
	a.tx.showDetail = false
	a.activeTab = tabTransactions
	a.recompute()
}

func (a App) renderAccountsTab(cw, h int) string {
	v := a.accountsView()
	title, err := a.listTitle("Accounts", len(v.Rows))
	return renderTableCard(tableCard[model.Account]{
		title:    title,
		view:     v,
		state:    tabular.Status(a.lookupsBusy && a.accounts == nil, err, v),
		err:      err,
		cursor:   a.lists[tabAccounts],
		emptyMsg: "No accounts found",
	}, a.spinner.View(), cw, h)
}

func (a App) renderCategoriesTab(cw, h int) string {
	v := a.categoriesView()
	title, err := a.listTitle("Categories", len(v.Rows))
	return renderTableCard(tableCard[model.Category]{
		title:    title,
		view:     v,
		state:    tabular.Status(a.lookupsBusy && a.categories == nil, err, v),
		err:      err,
		cursor:   a.lists[tabCategories],
		emptyMsg: "No categories found",
	}, a.spinner.View(), cw, h)
}

// listTitle keeps previously loaded rows visible after a failed refresh;
// the error only replaces the table when there is nothing to show.
func (a App) listTitle(title string, rows int) (string, error) {
	if a.lookupsErr != nil && rows > 0 {
		return title + " (refresh failed, showing previous data)", nil
	}
	return title, a.lookupsErr
}
