package edit

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ledgr/internal/model"
)

var (
	testAccounts = []model.Account{
		{ID: "1", Name: "Cash"},
		{ID: "2", Name: "BCA Checking"},
	}
	expenseCats = []model.Category{
		{ID: "food", Name: "Food", Type: model.Expense},
		{ID: "rent", Name: "Rent", Type: model.Expense},
	}
	incomeCats = []model.Category{
		{ID: "salary", Name: "Salary", Type: model.Income},
	}
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 14, 5, 42, 0, time.UTC)
}

func existing() model.Transaction {
	ts, err := model.ParseTimestamp("2024-03-01T14:05:00")
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		ID:          "tx-9",
		Timestamp:   ts,
		Description: "Lunch",
		Amount:      decimal.NewFromInt(-50),
		Type:        model.Expense,
		Category:    model.Ref{ID: "food", Name: "Food"},
		Account:     model.Ref{ID: "1", Name: "Cash"},
		Currency:    "IDR",
	}
}

// resolveAll answers every fetch with the fixture lists.
func resolveAll(t *testing.T, s *Session, fetches []Fetch) {
	t.Helper()
	for _, f := range fetches {
		r := Result{Fetch: f}
		switch {
		case f.Kind == Accounts:
			r.Accounts = testAccounts
		case f.Type == model.Income:
			r.Categories = incomeCats
		default:
			r.Categories = expenseCats
		}
		require.True(t, s.Resolve(r), "resolve %s", f.Kind)
	}
}

func openEditing(t *testing.T) *Session {
	t.Helper()
	s := New(fixedClock, "IDR")
	resolveAll(t, s, s.OpenEdit(existing()))
	require.Equal(t, Editing, s.State())
	return s
}

func TestOpenEditSplitsTimestamp(t *testing.T) {
	s := New(fixedClock, "IDR")
	fetches := s.OpenEdit(existing())

	require.Len(t, fetches, 2)
	assert.Equal(t, Loading, s.State())
	snap := s.Snapshot()
	assert.Equal(t, "2024-03-01", snap.DateText)
	assert.Equal(t, "14:05", snap.TimeText)
	assert.Equal(t, "50", snap.AmountText)

	resolveAll(t, s, fetches)
	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T14:05:00", model.FormatTimestamp(out.Timestamp))
	assert.Equal(t, Submitting, s.State())
}

func TestOpenCreateDefaults(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return fixedClock()
	}
	s := New(clock, "IDR")
	fetches := s.OpenCreate()

	snap := s.Snapshot()
	assert.True(t, snap.Creating)
	assert.Empty(t, snap.Record.ID)
	assert.True(t, snap.Record.Amount.IsZero())
	assert.Equal(t, model.Expense, snap.Record.Type)
	assert.Equal(t, "IDR", snap.Record.Currency)
	assert.Equal(t, "2024-03-01", snap.DateText)
	assert.Equal(t, "14:05", snap.TimeText)
	assert.Equal(t, 0, snap.Record.Timestamp.Time.Second)

	resolveAll(t, s, fetches)
	s.Snapshot()
	assert.Equal(t, 1, calls, "now is sampled once")
}

func TestEditingWaitsForBothLookups(t *testing.T) {
	s := New(fixedClock, "IDR")
	fetches := s.OpenEdit(existing())

	require.True(t, s.Resolve(Result{Fetch: fetches[1], Categories: expenseCats}))
	assert.Equal(t, Loading, s.State())
	require.True(t, s.Resolve(Result{Fetch: fetches[0], Accounts: testAccounts}))
	assert.Equal(t, Editing, s.State())
}

func TestLookupFailureDisablesOnlyThatSelector(t *testing.T) {
	s := New(fixedClock, "IDR")
	fetches := s.OpenEdit(existing())

	require.True(t, s.Resolve(Result{Fetch: fetches[0], Err: errors.New("503")}))
	require.True(t, s.Resolve(Result{Fetch: fetches[1], Categories: expenseCats}))

	snap := s.Snapshot()
	assert.Equal(t, Editing, snap.State)
	assert.True(t, snap.AccountsFailed)
	assert.Empty(t, snap.Accounts)
	assert.False(t, snap.CategoriesFailed)
	assert.Len(t, snap.Categories, 2)
}

func TestTypeChangeRoundTripsSign(t *testing.T) {
	s := openEditing(t)

	_, ok := s.SetType(model.Income)
	require.True(t, ok)
	assert.Equal(t, "50", s.Snapshot().Record.Amount.String())

	_, ok = s.SetType(model.Expense)
	require.True(t, ok)
	assert.Equal(t, "-50", s.Snapshot().Record.Amount.String())
}

func TestTypeChangeClearsForeignCategory(t *testing.T) {
	s := openEditing(t)

	f, ok := s.SetType(model.Income)
	require.True(t, ok)
	assert.Equal(t, Categories, f.Kind)
	assert.Equal(t, model.Income, f.Type)

	snap := s.Snapshot()
	assert.Empty(t, snap.Record.Category.ID)
	assert.True(t, snap.CategoriesLoading)
	assert.Empty(t, snap.Categories)
}

func TestTypeChangeKeepsUntypedCategory(t *testing.T) {
	s := New(fixedClock, "IDR")
	fetches := s.OpenEdit(existing())
	misc := model.Category{ID: "misc", Name: "Misc"}
	require.True(t, s.Resolve(Result{Fetch: fetches[0], Accounts: testAccounts}))
	require.True(t, s.Resolve(Result{Fetch: fetches[1], Categories: append([]model.Category{misc}, expenseCats...)}))
	require.True(t, s.SelectCategory("misc"))

	_, ok := s.SetType(model.Income)
	require.True(t, ok)
	assert.Equal(t, "misc", s.Snapshot().Record.Category.ID)
}

func TestStaleCategoryResponseDropped(t *testing.T) {
	s := openEditing(t)

	incomeFetch, ok := s.SetType(model.Income)
	require.True(t, ok)
	expenseFetch, ok := s.SetType(model.Expense)
	require.True(t, ok)

	// The income response arrives after the user switched back to expense.
	assert.False(t, s.Resolve(Result{Fetch: incomeFetch, Categories: incomeCats}))
	assert.Empty(t, s.Snapshot().Categories)

	assert.True(t, s.Resolve(Result{Fetch: expenseFetch, Categories: expenseCats}))
	assert.Len(t, s.Snapshot().Categories, 2)
}

func TestOlderFetchForSameTypeDropped(t *testing.T) {
	s := openEditing(t)

	first, _ := s.SetType(model.Income)
	s.SetType(model.Expense)
	latest, _ := s.SetType(model.Income)

	assert.False(t, s.Resolve(Result{Fetch: first, Categories: incomeCats}))
	assert.True(t, s.Resolve(Result{Fetch: latest, Categories: incomeCats}))
}

func TestResponseFromPreviousSessionDropped(t *testing.T) {
	s := New(fixedClock, "IDR")
	old := s.OpenEdit(existing())
	s.Cancel()
	s.OpenCreate()

	assert.False(t, s.Resolve(Result{Fetch: old[0], Accounts: testAccounts}))
	assert.Empty(t, s.Snapshot().Accounts)
}

func TestSelectUnknownIDIsNoop(t *testing.T) {
	s := openEditing(t)

	assert.False(t, s.SelectCategory("salary"))
	assert.Equal(t, model.Ref{ID: "food", Name: "Food"}, s.Snapshot().Record.Category)

	assert.False(t, s.SelectAccount("99"))
	assert.Equal(t, "1", s.Snapshot().Record.Account.ID)

	assert.True(t, s.SelectAccount("2"))
	assert.Equal(t, model.Ref{ID: "2", Name: "BCA Checking"}, s.Snapshot().Record.Account)
}

func TestAmountMagnitude(t *testing.T) {
	s := openEditing(t)

	require.NoError(t, s.SetAmountText("12.5"))
	assert.Equal(t, "-12.5", s.Snapshot().Record.Amount.String())

	assert.ErrorIs(t, s.SetAmountText("-3"), ErrBadAmount)
	assert.ErrorIs(t, s.SetAmountText("ten"), ErrBadAmount)

	require.NoError(t, s.SetAmount(decimal.NewFromInt(7)))
	assert.Equal(t, "-7", s.Snapshot().Record.Amount.String())
	assert.True(t, s.Valid())
	assert.ErrorIs(t, s.SetAmount(decimal.NewFromInt(-1)), ErrBadAmount)
}

func TestUnreadableAmountBlocksSubmit(t *testing.T) {
	s := openEditing(t)
	require.NoError(t, s.SetAmountText("12"))
	require.True(t, s.Valid())

	assert.ErrorIs(t, s.SetAmountText("12x"), ErrBadAmount)
	snap := s.Snapshot()
	assert.Equal(t, "12x", snap.AmountText)
	assert.True(t, snap.Record.Amount.IsZero())
	assert.False(t, snap.Valid)
	assert.Equal(t, []string{"amount is not a number"}, snap.Problems)

	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, Editing, s.State())

	require.NoError(t, s.SetAmountText("12.5"))
	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, "-12.5", out.Amount.String())
}

func TestValidityRequiresEveryField(t *testing.T) {
	clearers := map[string]func(t *testing.T, s *Session){
		"description": func(t *testing.T, s *Session) { require.NoError(t, s.SetDescription("   ")) },
		"amount":      func(t *testing.T, s *Session) { require.NoError(t, s.SetAmountText("0")) },
		"category": func(t *testing.T, s *Session) {
			f, ok := s.SetType(model.Income)
			require.True(t, ok)
			require.True(t, s.Resolve(Result{Fetch: f, Categories: incomeCats}))
		},
		"account": func(t *testing.T, s *Session) { s.work.Account = model.Ref{} },
		"date":    func(t *testing.T, s *Session) { require.NoError(t, s.SetDateText("")) },
		"time":    func(t *testing.T, s *Session) { require.NoError(t, s.SetTimeText(" ")) },
	}

	for field, unset := range clearers {
		t.Run(field, func(t *testing.T) {
			s := openEditing(t)
			require.True(t, s.Valid())

			unset(t, s)
			assert.False(t, s.Valid())
			assert.Len(t, s.Problems(), 1)

			_, err := s.Submit()
			assert.ErrorIs(t, err, ErrInvalid)
			assert.NotEqual(t, Submitting, s.State())
		})
	}
}

func TestDateAndTimeUpdateIndependently(t *testing.T) {
	s := openEditing(t)

	require.NoError(t, s.SetTimeText("09:30"))
	out, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T09:30:00", model.FormatTimestamp(out.Timestamp))

	s = openEditing(t)
	require.NoError(t, s.SetDateText("2024-02-29"))
	out, err = s.Submit()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T14:05:00", model.FormatTimestamp(out.Timestamp))
}

func TestSubmitRejectsBadTimestamp(t *testing.T) {
	s := openEditing(t)
	require.NoError(t, s.SetDateText("2024-13-40"))

	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrBadTimestamp)
	assert.Equal(t, Editing, s.State())
}

func TestCompleteFailureKeepsEditing(t *testing.T) {
	s := openEditing(t)
	_, err := s.Submit()
	require.NoError(t, err)

	boom := errors.New("500")
	require.NoError(t, s.Complete(boom))
	assert.Equal(t, Editing, s.State())
	assert.Equal(t, boom, s.Snapshot().LastError)
	assert.Equal(t, "tx-9", s.Snapshot().Record.ID)
}

func TestCompleteSuccessResets(t *testing.T) {
	s := openEditing(t)
	_, err := s.Submit()
	require.NoError(t, err)

	require.NoError(t, s.Complete(nil))
	assert.Equal(t, Inactive, s.State())
	assert.ErrorIs(t, s.Complete(nil), ErrNotEditing)
}

func TestCancelLeaksNothing(t *testing.T) {
	s := openEditing(t)
	s.Cancel()

	assert.Equal(t, Inactive, s.State())
	assert.ErrorIs(t, s.SetDescription("x"), ErrNotEditing)

	s.OpenCreate()
	snap := s.Snapshot()
	assert.Empty(t, snap.Record.Description)
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Categories)
	assert.Nil(t, snap.LastError)
}

func TestSubmitBeforeLookupsResolve(t *testing.T) {
	s := New(fixedClock, "IDR")
	fetches := s.OpenEdit(existing())

	snap := s.Snapshot()
	assert.Equal(t, Loading, snap.State)
	assert.False(t, snap.Valid)
	assert.Contains(t, snap.Problems, "waiting for accounts and categories")

	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrLoading)

	require.True(t, s.Resolve(Result{Fetch: fetches[0], Accounts: testAccounts}))
	assert.False(t, s.Valid())

	require.True(t, s.Resolve(Result{Fetch: fetches[1], Categories: expenseCats}))
	assert.True(t, s.Valid())
}
