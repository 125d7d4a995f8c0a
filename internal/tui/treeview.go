package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
)

var (
	treeLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	treeAmountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	clearedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
)

// TreeView renders an aggregated account forest with expand/collapse state,
// ancestry connector lines and a cursor. Collapse state is keyed by full
// path and thrown away whenever the account set changes.
type TreeView struct {
	roots     []*ledger.Account
	collapsed map[string]bool
	cursor    int
	top       int
	rows      []treeRow
}

type treeRow struct {
	acct   *ledger.Account
	prefix string
}

// NewTreeView returns an empty tree view.
func NewTreeView() *TreeView {
	return &TreeView{collapsed: map[string]bool{}}
}

// SetAccounts replaces the forest and resets all UI state. Nodes start
// expanded, except those whose folded name is "liquido", which start
// collapsed.
func (t *TreeView) SetAccounts(roots []*ledger.Account) {
	t.roots = roots
	t.collapsed = map[string]bool{}
	t.cursor = 0
	t.top = 0
	var seed func([]*ledger.Account)
	seed = func(accounts []*ledger.Account) {
		for _, a := range accounts {
			if ledger.FoldName(a.Name) == "liquido" {
				t.collapsed[a.FullPath] = true
			}
			seed(a.Children)
		}
	}
	seed(roots)
	t.rebuild()
}

// Empty reports whether the view has no accounts.
func (t *TreeView) Empty() bool { return len(t.rows) == 0 }

// Selected returns the account under the cursor, or nil.
func (t *TreeView) Selected() *ledger.Account {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return nil
	}
	return t.rows[t.cursor].acct
}

// Toggle flips the collapse state of the node under the cursor. Toggling is
// local: siblings and ancestors keep their state.
func (t *TreeView) Toggle() {
	a := t.Selected()
	if a == nil || a.Leaf() {
		return
	}
	t.collapsed[a.FullPath] = !t.collapsed[a.FullPath]
	t.rebuild()
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
}

// Expanded reports whether a path is currently expanded.
func (t *TreeView) Expanded(fullPath string) bool {
	return !t.collapsed[fullPath]
}

// CursorUp moves the cursor one visible row up.
func (t *TreeView) CursorUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// CursorDown moves the cursor one visible row down.
func (t *TreeView) CursorDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
	}
}

// rebuild flattens the forest into visible rows, honoring collapse state
// and computing the connector prefix for every row.
func (t *TreeView) rebuild() {
	t.rows = t.rows[:0]
	var walk func(accounts []*ledger.Account, ancestry []bool)
	walk = func(accounts []*ledger.Account, ancestry []bool) {
		for i, a := range accounts {
			last := i == len(accounts)-1
			t.rows = append(t.rows, treeRow{acct: a, prefix: connector(ancestry, last)})
			if len(a.Children) > 0 && !t.collapsed[a.FullPath] {
				walk(a.Children, append(ancestry, last))
			}
		}
	}
	walk(t.roots, nil)
}

// connector draws the ancestry lines for one row: a vertical bar for every
// ancestor that still has siblings below, then the branch glyph.
func connector(ancestry []bool, last bool) string {
	var b strings.Builder
	for _, ancestorLast := range ancestry {
		if ancestorLast {
			b.WriteString("   ")
		} else {
			b.WriteString("│  ")
		}
	}
	if last {
		b.WriteString("└─ ")
	} else {
		b.WriteString("├─ ")
	}
	return b.String()
}

// View renders the visible window of rows.
func (t *TreeView) View(width, height int, reg *money.Registry, cursorVisible bool) string {
	if len(t.rows) == 0 {
		return "No accounts."
	}
	t.scrollIntoView(height)

	end := t.top + height
	if end > len(t.rows) {
		end = len(t.rows)
	}
	lines := make([]string, 0, end-t.top)
	for i := t.top; i < end; i++ {
		lines = append(lines, t.renderRow(i, width, reg, cursorVisible))
	}
	return strings.Join(lines, "\n")
}

func (t *TreeView) renderRow(i, width int, reg *money.Registry, cursorVisible bool) string {
	row := t.rows[i]
	a := row.acct

	marker := "  "
	if len(a.Children) > 0 {
		if t.collapsed[a.FullPath] {
			marker = "▸ "
		} else {
			marker = "▾ "
		}
	}

	prefix := "  "
	if cursorVisible && i == t.cursor {
		prefix = "> "
	}

	amounts := make([]string, 0, 2)
	for _, code := range a.Currencies() {
		cell := treeAmountStyle.Render(reg.Format(code, a.Amount(code)))
		if c := a.ClearedAmount(code); !c.IsZero() && !c.Equal(a.Amount(code)) {
			cell += clearedStyle.Render(" (✓" + reg.Format(code, c) + ")")
		}
		amounts = append(amounts, cell)
	}
	right := strings.Join(amounts, "  ")

	left := prefix + treeLineStyle.Render(row.prefix) + marker + a.Name
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (t *TreeView) scrollIntoView(height int) {
	if height <= 0 {
		return
	}
	if t.cursor < t.top {
		t.top = t.cursor
	} else if t.cursor >= t.top+height {
		t.top = t.cursor - height + 1
	}
	maxTop := len(t.rows) - height
	if maxTop < 0 {
		maxTop = 0
	}
	if t.top > maxTop {
		t.top = maxTop
	}
	if t.top < 0 {
		t.top = 0
	}
}
