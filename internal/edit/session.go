// Package edit holds the state of a single transaction being created or
// edited: the working copy, its type-scoped lookup lists, and the split
// date and time text fields that are recombined on submit.
//
// A Session is not safe for concurrent use. Lookup fetches run elsewhere and
// come back through Resolve, which drops responses that no longer match.
package edit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/ledgr/internal/model"
)

// Errors returned by Session.
var (
	ErrNotEditing   = errors.New("edit: no session is being edited")
	ErrLoading      = errors.New("edit: accounts or categories are still loading")
	ErrInvalid      = errors.New("edit: transaction is incomplete")
	ErrBadTimestamp = errors.New("edit: invalid date or time")
	ErrBadAmount    = errors.New("edit: amount must be a non-negative number")
)

// State is the session lifecycle state.
type State int

// Session states.
const (
	Inactive State = iota
	Loading
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	}
	return "inactive"
}

// Kind identifies a lookup list.
type Kind int

// Lookup kinds.
const (
	Accounts Kind = iota
	Categories
)

func (k Kind) String() string {
	if k == Categories {
		return "categories"
	}
	return "accounts"
}

// Fetch is a lookup request the caller must perform. It is handed back
// unchanged inside the matching Result.
type Fetch struct {
	Kind Kind
	Type model.TxType // category scope; empty for accounts
	Seq  int
	gen  int
}

// Result is the outcome of a Fetch.
type Result struct {
	Fetch      Fetch
	Accounts   []model.Account
	Categories []model.Category
	Err        error
}

// Clock returns the current time.
type Clock func() time.Time

type lookup struct {
	pending bool
	failed  bool
}

// Session is a record edit session.
type Session struct {
	now      Clock
	currency string

	state    State
	gen      int
	creating bool
	work     model.Transaction

	amountText string
	amountBad  bool
	dateText   string
	timeText   string

	accounts   []model.Account
	categories []model.Category
	acct       lookup
	cat        lookup
	catSeq     int

	lastErr error
}

// New returns an inactive session. A nil clock means time.Now.
func New(now Clock, defaultCurrency string) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{now: now, currency: defaultCurrency}
}

// OpenEdit starts editing a copy of tx and returns the lookups to fetch.
func (s *Session) OpenEdit(tx model.Transaction) []Fetch {
	s.reset()
	s.work = tx.WithType(tx.Type)
	s.dateText = tx.Timestamp.Date.String()
	s.timeText = model.FormatClock(tx.Timestamp.Time)
	s.amountText = magnitudeText(s.work.Amount)
	return s.open()
}

// OpenCreate starts a new expense stamped with the current minute and
// returns the lookups to fetch.
func (s *Session) OpenCreate() []Fetch {
	s.reset()
	now := civil.DateTimeOf(s.now())
	now.Time = civil.Time{Hour: now.Time.Hour, Minute: now.Time.Minute}

	s.creating = true
	s.work = model.Transaction{
		Timestamp: now,
		Amount:    decimal.Zero,
		Type:      model.Expense,
		Currency:  s.currency,
	}
	s.dateText = now.Date.String()
	s.timeText = model.FormatClock(now.Time)
	return s.open()
}

func (s *Session) open() []Fetch {
	s.state = Loading
	s.acct = lookup{pending: true}
	return []Fetch{
		{Kind: Accounts, gen: s.gen},
		s.categoryFetch(),
	}
}

func (s *Session) categoryFetch() Fetch {
	s.catSeq++
	s.cat = lookup{pending: true}
	s.categories = nil
	return Fetch{Kind: Categories, Type: s.work.Type, Seq: s.catSeq, gen: s.gen}
}

// Resolve applies a lookup result. It reports false when the result was
// dropped as stale: from another session, for a superseded type, or older
// than the latest category fetch.
func (s *Session) Resolve(r Result) bool {
	if !s.mutable() || r.Fetch.gen != s.gen {
		return false
	}

	switch r.Fetch.Kind {
	case Accounts:
		if !s.acct.pending {
			return false
		}
		s.acct.pending = false
		s.acct.failed = r.Err != nil
		if r.Err == nil {
			s.accounts = r.Accounts
		}
	case Categories:
		if !s.cat.pending || r.Fetch.Seq != s.catSeq || r.Fetch.Type != s.work.Type {
			return false
		}
		s.cat.pending = false
		s.cat.failed = r.Err != nil
		if r.Err == nil {
			s.categories = scoped(r.Categories, r.Fetch.Type)
		}
	default:
		return false
	}

	if s.state == Loading && !s.acct.pending && !s.cat.pending {
		s.state = Editing
	}
	return true
}

func scoped(cats []model.Category, typ model.TxType) []model.Category {
	out := make([]model.Category, 0, len(cats))
	for _, c := range cats {
		if c.Type == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// SetType switches the transaction type, re-signs the amount, and returns
// the category fetch for the new type. The selected category is kept only
// if the cached list says it belongs to the new type or to no type.
func (s *Session) SetType(typ model.TxType) (Fetch, bool) {
	if !s.mutable() || typ == s.work.Type {
		return Fetch{}, false
	}

	keep := false
	for _, c := range s.categories {
		if c.ID == s.work.Category.ID && (c.Type == typ || c.Type == "") {
			keep = true
			break
		}
	}
	if !keep {
		s.work.Category = model.Ref{}
	}

	s.work = s.work.WithType(typ)
	return s.categoryFetch(), true
}

// SetAmount sets the displayed magnitude.
func (s *Session) SetAmount(m decimal.Decimal) error {
	if !s.mutable() {
		return ErrNotEditing
	}
	if m.Sign() < 0 {
		return ErrBadAmount
	}
	s.work = s.work.WithMagnitude(m)
	s.amountText = magnitudeText(m)
	s.amountBad = false
	return nil
}

// SetAmountText parses and sets the displayed magnitude. Blank text means
// zero. Text that does not parse is kept as displayed, the stored amount is
// zeroed, and the session stays invalid until the text is corrected.
func (s *Session) SetAmountText(text string) error {
	if !s.mutable() {
		return ErrNotEditing
	}
	s.amountText = text
	trimmed := strings.TrimSpace(text)
	m := decimal.Zero
	if trimmed != "" {
		var err error
		m, err = decimal.NewFromString(trimmed)
		if err != nil || m.Sign() < 0 {
			s.work = s.work.WithMagnitude(decimal.Zero)
			s.amountBad = true
			return fmt.Errorf("%w: %q", ErrBadAmount, text)
		}
	}
	s.work = s.work.WithMagnitude(m)
	s.amountBad = false
	return nil
}

// SetDescription sets the description.
func (s *Session) SetDescription(text string) error {
	if !s.mutable() {
		return ErrNotEditing
	}
	s.work.Description = text
	return nil
}

// SetDateText sets the date half of the timestamp. It is parsed on submit.
func (s *Session) SetDateText(text string) error {
	if !s.mutable() {
		return ErrNotEditing
	}
	s.dateText = text
	return nil
}

// SetTimeText sets the time half of the timestamp. It is parsed on submit.
func (s *Session) SetTimeText(text string) error {
	if !s.mutable() {
		return ErrNotEditing
	}
	s.timeText = text
	return nil
}

// SelectCategory selects a category from the cached list. Unknown ids are ignored.
func (s *Session) SelectCategory(id string) bool {
	if !s.mutable() {
		return false
	}
	for _, c := range s.categories {
		if c.ID == id {
			s.work.Category = c.Ref()
			return true
		}
	}
	return false
}

// SelectAccount selects an account from the cached list. Unknown ids are ignored.
func (s *Session) SelectAccount(id string) bool {
	if !s.mutable() {
		return false
	}
	for _, a := range s.accounts {
		if a.ID == id {
			s.work.Account = a.Ref()
			return true
		}
	}
	return false
}

// Valid reports whether the session can be submitted: both lookups have
// resolved and every required field is filled in.
func (s *Session) Valid() bool {
	return s.state == Editing && len(s.Problems()) == 0
}

// Problems lists the missing or unreadable required fields, plus any lookup
// still in flight.
func (s *Session) Problems() []string {
	var p []string
	if s.acct.pending || s.cat.pending {
		p = append(p, "waiting for accounts and categories")
	}
	if strings.TrimSpace(s.work.Description) == "" {
		p = append(p, "description is required")
	}
	switch {
	case s.amountBad:
		p = append(p, "amount is not a number")
	case s.work.Amount.IsZero():
		p = append(p, "amount must not be zero")
	}
	if s.work.Category.ID == "" {
		p = append(p, "category is required")
	}
	if s.work.Account.ID == "" {
		p = append(p, "account is required")
	}
	if strings.TrimSpace(s.dateText) == "" {
		p = append(p, "date is required")
	}
	if strings.TrimSpace(s.timeText) == "" {
		p = append(p, "time is required")
	}
	return p
}

// Submit recombines the date and time text with second 0 and returns the
// record for the save sink. The session waits in Submitting for Complete.
func (s *Session) Submit() (model.Transaction, error) {
	switch s.state {
	case Editing:
	case Loading:
		return model.Transaction{}, ErrLoading
	default:
		return model.Transaction{}, ErrNotEditing
	}
	if problems := s.Problems(); len(problems) > 0 {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}

	d, err := civil.ParseDate(strings.TrimSpace(s.dateText))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: date %q", ErrBadTimestamp, s.dateText)
	}
	clock, err := model.ParseClock(s.timeText)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: time %q", ErrBadTimestamp, s.timeText)
	}

	s.work.Timestamp = civil.DateTime{Date: d, Time: clock}
	s.work.Description = strings.TrimSpace(s.work.Description)
	s.state = Submitting
	s.lastErr = nil
	return s.work, nil
}

// Complete reports the save outcome. Success ends the session; failure
// returns to Editing with the error kept for display.
func (s *Session) Complete(err error) error {
	if s.state != Submitting {
		return ErrNotEditing
	}
	if err != nil {
		s.state = Editing
		s.lastErr = err
		return nil
	}
	s.reset()
	return nil
}

// Cancel discards the working copy and the lookup caches.
func (s *Session) Cancel() {
	s.reset()
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Active reports whether a session is open.
func (s *Session) Active() bool { return s.state != Inactive }

func (s *Session) mutable() bool {
	return s.state == Loading || s.state == Editing
}

func (s *Session) reset() {
	gen := s.gen + 1
	*s = Session{now: s.now, currency: s.currency, gen: gen}
}

func magnitudeText(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return amount.Abs().String()
}

// Snapshot is a read-only view of a session for renderers.
type Snapshot struct {
	State      State
	Creating   bool
	Record     model.Transaction
	AmountText string
	DateText   string
	TimeText   string
	Accounts   []model.Account
	Categories []model.Category

	AccountsLoading   bool
	AccountsFailed    bool
	CategoriesLoading bool
	CategoriesFailed  bool

	Valid     bool
	Problems  []string
	LastError error
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:             s.state,
		Creating:          s.creating,
		Record:            s.work,
		AmountText:        s.amountText,
		DateText:          s.dateText,
		TimeText:          s.timeText,
		Accounts:          s.accounts,
		Categories:        s.categories,
		AccountsLoading:   s.acct.pending,
		AccountsFailed:    s.acct.failed,
		CategoriesLoading: s.cat.pending,
		CategoriesFailed:  s.cat.failed,
		Valid:             s.Valid(),
		Problems:          s.Problems(),
		LastError:         s.lastErr,
	}
}
