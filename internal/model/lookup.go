package model

// Account is an entry of the account lookup list.
type Account struct {
	ID      string
	Name    string
	GroupID string
	UserID  string
}

// Ref returns the account as a transaction reference.
func (a Account) Ref() Ref { return Ref{ID: a.ID, Name: a.Name} }

// Field returns the default text form of a column key.
func (a Account) Field(key string) string {
	switch key {
	case "id":
		return a.ID
	case "name":
		return a.Name
	case "group":
		return a.GroupID
	case "user":
		return a.UserID
	}
	return ""
}

// Category is an entry of the category lookup list. Categories are scoped to a type.
type Category struct {
	ID   string
	Name string
	Type TxType
}

// Ref returns the category as a transaction reference.
func (c Category) Ref() Ref { return Ref{ID: c.ID, Name: c.Name} }

// Field returns the default text form of a column key.
func (c Category) Field(key string) string {
	switch key {
	case "id":
		return c.ID
	case "name":
		return c.Name
	case "type":
		return string(c.Type)
	}
	return ""
}
