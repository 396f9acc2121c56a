package menu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownItem is returned when no item has the requested id.
	ErrUnknownItem = errors.New("menu: unknown item")
	// ErrDisabled is returned when invoking a disabled button.
	ErrDisabled = errors.New("menu: item disabled")
	// ErrNotInvokable is returned when invoking a submenu or separator.
	ErrNotInvokable = errors.New("menu: item is not a button")
)

// Item is a context menu entry: a Button, SubMenu or Separator.
type Item interface {
	item()
}

// Button runs OnClick when activated.
type Button struct {
	ID       string
	Label    string
	Icon     string
	Disabled bool
	OnClick  func()
}

// SubMenu nests further items.
type SubMenu struct {
	ID    string
	Label string
	Icon  string
	Items []Item
}

// Separator groups neighbouring items.
type Separator struct{}

func (Button) item()    {}
func (SubMenu) item()   {}
func (Separator) item() {}

// Walk visits items depth first. Depth is 0 for top-level entries.
func Walk(items []Item, fn func(depth int, it Item)) {
	walk(items, 0, fn)
}

func walk(items []Item, depth int, fn func(int, Item)) {
	for _, it := range items {
		switch v := it.(type) {
		case Button, Separator:
			fn(depth, v)
		case SubMenu:
			fn(depth, v)
			walk(v.Items, depth+1, fn)
		default:
			panic(fmt.Sprintf("menu: unhandled item type %T", it))
		}
	}
}

// ID returns the item's identifier; separators have none.
func ID(it Item) string {
	switch v := it.(type) {
	case Button:
		return v.ID
	case SubMenu:
		return v.ID
	case Separator:
		return ""
	default:
		panic(fmt.Sprintf("menu: unhandled item type %T", it))
	}
}

// Find returns the item with id anywhere in the tree.
func Find(items []Item, id string) (Item, bool) {
	var found Item
	Walk(items, func(_ int, it Item) {
		if found == nil && id != "" && ID(it) == id {
			found = it
		}
	})
	return found, found != nil
}

// Invoke clicks the button with id.
func Invoke(items []Item, id string) error {
	it, ok := Find(items, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	b, ok := it.(Button)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInvokable, id)
	}
	if b.Disabled {
		return fmt.Errorf("%w: %s", ErrDisabled, id)
	}
	if b.OnClick != nil {
		b.OnClick()
	}
	return nil
}

// Row is one visible line of a rendered menu.
type Row struct {
	Depth int
	Item  Item
}

// Flatten lists the visible rows, descending only into submenus for which
// expanded returns true.
func Flatten(items []Item, expanded func(SubMenu) bool) []Row {
	return flatten(nil, items, 0, expanded)
}

func flatten(rows []Row, items []Item, depth int, expanded func(SubMenu) bool) []Row {
	for _, it := range items {
		rows = append(rows, Row{Depth: depth, Item: it})
		switch v := it.(type) {
		case Button, Separator:
		case SubMenu:
			if expanded != nil && expanded(v) {
				rows = flatten(rows, v.Items, depth+1, expanded)
			}
		default:
			panic(fmt.Sprintf("menu: unhandled item type %T", it))
		}
	}
	return rows
}
