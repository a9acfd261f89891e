// Package tabular turns uniform record lists into header/row structures that
// the CLI and TUI renderers draw. It never fetches, sorts or filters.
package tabular

import "strings"

// Record is any row type with a default text form per column key.
type Record interface {
	Field(key string) string
}

// Align is a column's horizontal alignment hint.
type Align int

// Alignments.
const (
	AlignLeft Align = iota
	AlignRight
)

// Cell describes how a column fills its cells: either the record's default
// text form for the column key, or a supplied renderer.
type Cell[T Record] struct {
	render func(T) string
}

// Text uses the record's Field for the column key.
func Text[T Record]() Cell[T] { return Cell[T]{} }

// Custom uses fn to render the cell.
func Custom[T Record](fn func(T) string) Cell[T] { return Cell[T]{render: fn} }

// IsCustom reports whether the cell has its own renderer.
func (c Cell[T]) IsCustom() bool { return c.render != nil }

func (c Cell[T]) text(rec T, key string) string {
	if c.render != nil {
		return c.render(rec)
	}
	return rec.Field(key)
}

// Column is a column descriptor.
type Column[T Record] struct {
	Key   string
	Label string
	Cell  Cell[T]
	Align Align
}

// Action is a per-row affordance. The view model forwards it untouched.
type Action struct {
	ID    string
	Label string
}

// Row is one rendered body row.
type Row[T Record] struct {
	Key     string
	Record  T
	Cells   []string
	Actions []Action
}

// View is the renderable table.
type View[T Record] struct {
	Headers    []string
	Aligns     []Align
	Rows       []Row[T]
	HasActions bool
}

// ActionsLabel is the header of the trailing actions column.
const ActionsLabel = "Actions"

// Build renders rows through columns in input order. rowKey must be unique
// across rows. When actions is non-nil a trailing actions column is added.
func Build[T Record](columns []Column[T], rows []T, rowKey func(T) string, actions func(T) []Action) View[T] {
	v := View[T]{
		Headers:    make([]string, 0, len(columns)+1),
		Aligns:     make([]Align, 0, len(columns)+1),
		Rows:       make([]Row[T], 0, len(rows)),
		HasActions: actions != nil,
	}
	for _, c := range columns {
		v.Headers = append(v.Headers, c.Label)
		v.Aligns = append(v.Aligns, c.Align)
	}
	if v.HasActions {
		v.Headers = append(v.Headers, ActionsLabel)
		v.Aligns = append(v.Aligns, AlignLeft)
	}

	for _, rec := range rows {
		row := Row[T]{
			Key:    rowKey(rec),
			Record: rec,
			Cells:  make([]string, 0, len(v.Headers)),
		}
		for _, c := range columns {
			row.Cells = append(row.Cells, c.Cell.text(rec, c.Key))
		}
		if v.HasActions {
			row.Actions = actions(rec)
			row.Cells = append(row.Cells, actionText(row.Actions))
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func actionText(actions []Action) string {
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	return strings.Join(labels, " ")
}

// IndexOf returns the position of the row with key, or -1.
func (v View[T]) IndexOf(key string) int {
	for i, r := range v.Rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

// Invoke looks up an action on a row and hands back the row's record.
func (v View[T]) Invoke(rowKey, actionID string) (T, Action, bool) {
	var zero T
	i := v.IndexOf(rowKey)
	if i < 0 {
		return zero, Action{}, false
	}
	row := v.Rows[i]
	for _, a := range row.Actions {
		if a.ID == actionID {
			return row.Record, a, true
		}
	}
	return zero, Action{}, false
}

// State is what a renderer should show for a list.
type State int

// List states.
const (
	Ready State = iota
	Loading
	Failed
	Empty
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	case Empty:
		return "empty"
	}
	return "ready"
}

// Status classifies a list for rendering. An empty list is only Empty once
// loading has finished without error.
func Status[T Record](loading bool, err error, v View[T]) State {
	switch {
	case loading:
		return Loading
	case err != nil:
		return Failed
	case len(v.Rows) == 0:
		return Empty
	}
	return Ready
}

// EmptyMessage is shown for a finished, empty list.
const EmptyMessage = "No data found"
