// Package tui is the terminal dashboard: tabs for balances, transactions,
// cash flow, budget and the two expense charts, all fed by async API
// fetches scheduled as Bubble Tea commands.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/saldotui/saldotui/internal/api"
	"github.com/saldotui/saldotui/internal/config"
	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
	"github.com/saldotui/saldotui/internal/rates"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("246"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 2)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
	onlineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	offlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type tab int

const (
	tabBalances tab = iota
	tabTransactions
	tabCashFlow
	tabBudget
	tabExpenses
	tabDiff
	tabCount
)

var tabTitles = [tabCount]string{"Balances", "Transactions", "Cash Flow", "Budget", "Expenses", "Diff"}

type keyMap struct {
	NextTab key.Binding
	Refresh key.Binding
	UpDown  key.Binding
	Toggle  key.Binding
	Select  key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		UpDown:  key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "move")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "fold")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.UpDown, k.Toggle, k.Select, k.Refresh, k.Quit}
}

type balanceMsg struct {
	bal   api.Balance
	scope string
	err   error
}

type transactionsMsg struct {
	rows    []api.Transaction
	account string
	err     error
}

type cashFlowMsg struct {
	rows []api.CashFlowRow
	err  error
}

type budgetMsg struct {
	report api.BudgetReport
	err    error
}

type diffMsg struct {
	monthA, monthB string
	a, b           api.Balance
	err            error
}

type healthMsg struct {
	health api.Health
	err    error
}

type healthTickMsg struct{}

type ratesMsg struct{ table rates.Table }

type ratesTickMsg struct{}

// App is the top-level Bubble Tea model.
type App struct {
	ctx       context.Context
	cfg       config.Config
	client    *api.Client
	reg       *money.Registry
	norm      *ledger.Normalizer
	fetcher   *rates.Fetcher
	log       *slog.Logger
	keys      keyMap
	spin      spinner.Model
	loading   bool
	activeTab tab

	tree      *TreeView
	treeScope string
	cashTree  *TreeView

	txRows    []api.Transaction
	txAccount string

	budget api.BudgetReport

	expenseRows []ledger.Row
	diffRows    []ledger.DiffRow
	diffTotals  ledger.DiffTotals
	diffMonths  [2]string

	rates     rates.Table
	connected bool
	status    string
	width     int
	height    int
}

// New wires the dashboard. fetcher may be nil when no rates URL is
// configured; the built-in default rates are used throughout.
func New(ctx context.Context, cfg config.Config, client *api.Client, reg *money.Registry, norm *ledger.Normalizer, fetcher *rates.Fetcher, log *slog.Logger) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &App{
		ctx:      ctx,
		cfg:      cfg,
		client:   client,
		reg:      reg,
		norm:     norm,
		fetcher:  fetcher,
		log:      log,
		keys:     newKeyMap(),
		spin:     sp,
		tree:     NewTreeView(),
		cashTree: NewTreeView(),
		rates:    rates.Defaults(),
		loading:  true,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.fetchBalance(""),
		a.fetchCashFlow(),
		a.fetchBudget(),
		a.fetchDiff(),
		a.fetchHealth(),
		a.spin.Tick,
		tea.Tick(a.cfg.API.HealthInterval, func(time.Time) tea.Msg { return healthTickMsg{} }),
	}
	if a.fetcher != nil {
		cmds = append(cmds,
			a.fetchRates(),
			tea.Tick(a.cfg.Rates.Refresh, func(time.Time) tea.Msg { return ratesTickMsg{} }),
		)
	}
	return tea.Batch(cmds...)
}

func (a *App) fetchBalance(scope string) tea.Cmd {
	return func() tea.Msg {
		bal, err := a.client.Balance(a.ctx, scope)
		return balanceMsg{bal: bal, scope: scope, err: err}
	}
}

func (a *App) fetchTransactions(account string) tea.Cmd {
	return func() tea.Msg {
		rows, err := a.client.Transactions(a.ctx, account)
		return transactionsMsg{rows: rows, account: account, err: err}
	}
}

func (a *App) fetchCashFlow() tea.Cmd {
	return func() tea.Msg {
		rows, err := a.client.CashFlow(a.ctx)
		return cashFlowMsg{rows: rows, err: err}
	}
}

func (a *App) fetchBudget() tea.Cmd {
	return func() tea.Msg {
		report, err := a.client.Budget(a.ctx)
		return budgetMsg{report: report, err: err}
	}
}

func (a *App) fetchDiff() tea.Cmd {
	now := time.Now()
	monthB := now.Format("2006-01")
	monthA := now.AddDate(0, -1, 0).Format("2006-01")
	return func() tea.Msg {
		balA, err := a.client.BalanceForMonth(a.ctx, monthA)
		if err != nil {
			return diffMsg{monthA: monthA, monthB: monthB, err: err}
		}
		balB, err := a.client.BalanceForMonth(a.ctx, monthB)
		return diffMsg{monthA: monthA, monthB: monthB, a: balA, b: balB, err: err}
	}
}

func (a *App) fetchHealth() tea.Cmd {
	return func() tea.Msg {
		h, err := a.client.Health(a.ctx)
		return healthMsg{health: h, err: err}
	}
}

func (a *App) fetchRates() tea.Cmd {
	return func() tea.Msg {
		return ratesMsg{table: a.fetcher.Fetch(a.ctx)}
	}
}

// expensePredicate honors the configured prefix override, falling back to
// the standard expense-root matching.
func (a *App) expensePredicate() func(string) bool {
	if prefix := a.cfg.UI.ExpensePrefix; prefix != "" {
		lower := strings.ToLower(prefix)
		return func(path string) bool {
			return strings.HasPrefix(strings.ToLower(path), lower)
		}
	}
	return ledger.ExpensePath
}

// resolver collapses an account's per-currency amounts into the display
// currency using the current rate table.
func (a *App) resolver() ledger.Resolver {
	display := a.cfg.UI.Currency
	table := a.rates
	return func(acct *ledger.Account) decimal.Decimal {
		total := decimal.Zero
		for _, code := range acct.Currencies() {
			total = total.Add(table.Convert(acct.Amount(code), code, display))
		}
		return total
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceMsg:
		a.loading = false
		if msg.err != nil {
			a.fail("Balance fetch failed", msg.err)
			return a, nil
		}
		// Overlapping requests are not cancelled; the latest resolution
		// wins on this state slice.
		roots := ledger.Aggregate(a.norm.Normalize(msg.bal.Records, msg.bal.Shape))
		a.tree.SetAccounts(roots)
		a.treeScope = msg.scope
		a.expenseRows = ledger.CapRows(
			ledger.ExpenseRows(roots, a.resolver(), a.expensePredicate()),
			a.cfg.UI.MaxChartRows)
		a.status = fmt.Sprintf("Balances updated (%d accounts).", countAccounts(roots))
		return a, nil

	case transactionsMsg:
		a.loading = false
		if msg.err != nil {
			a.fail("Transactions fetch failed", msg.err)
			return a, nil
		}
		a.txRows = msg.rows
		a.txAccount = msg.account
		a.activeTab = tabTransactions
		a.status = fmt.Sprintf("%d transactions for %s.", len(msg.rows), msg.account)
		return a, nil

	case cashFlowMsg:
		if msg.err != nil {
			a.fail("Cash flow fetch failed", msg.err)
			return a, nil
		}
		records := api.CashFlowRecords(msg.rows, a.cfg.UI.Currency)
		a.cashTree.SetAccounts(ledger.Aggregate(a.norm.Normalize(records, ledger.ShapeFlat)))
		return a, nil

	case budgetMsg:
		if msg.err != nil {
			a.fail("Budget fetch failed", msg.err)
			return a, nil
		}
		a.budget = msg.report
		return a, nil

	case diffMsg:
		if msg.err != nil {
			a.fail("Diff fetch failed", msg.err)
			return a, nil
		}
		a.diffMonths = [2]string{msg.monthA, msg.monthB}
		pred := a.expensePredicate()
		rowsA := ledger.ExpenseRows(ledger.Aggregate(a.norm.Normalize(msg.a.Records, msg.a.Shape)), a.resolver(), pred)
		rowsB := ledger.ExpenseRows(ledger.Aggregate(a.norm.Normalize(msg.b.Records, msg.b.Shape)), a.resolver(), pred)
		a.diffRows, a.diffTotals = ledger.Diff(rowsA, rowsB, a.cfg.UI.MaxChartRows)
		return a, nil

	case healthMsg:
		if msg.err != nil {
			// Non-fatal: log and leave the indicator unset.
			a.log.Warn("health check failed", "err", msg.err)
			a.connected = false
			return a, nil
		}
		a.connected = strings.EqualFold(msg.health.Status, "ok")
		return a, nil

	case healthTickMsg:
		return a, tea.Batch(
			a.fetchHealth(),
			tea.Tick(a.cfg.API.HealthInterval, func(time.Time) tea.Msg { return healthTickMsg{} }),
		)

	case ratesMsg:
		a.rates = msg.table
		return a, nil

	case ratesTickMsg:
		return a, tea.Batch(
			a.fetchRates(),
			tea.Tick(a.cfg.Rates.Refresh, func(time.Time) tea.Msg { return ratesTickMsg{} }),
		)

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}
	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.NextTab):
		a.activeTab = (a.activeTab + 1) % tabCount
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		a.loading = true
		a.status = "Refreshing..."
		return a, tea.Batch(a.fetchBalance(a.treeScope), a.fetchCashFlow(), a.fetchBudget(), a.fetchDiff(), a.spin.Tick)
	case key.Matches(msg, a.keys.Back):
		if a.activeTab == tabBalances && a.treeScope != "" {
			a.loading = true
			return a, tea.Batch(a.fetchBalance(""), a.spin.Tick)
		}
		if a.activeTab == tabTransactions {
			a.activeTab = tabBalances
		}
		return a, nil
	}

	tree := a.currentTree()
	if tree == nil {
		return a, nil
	}
	switch msg.String() {
	case "up", "k":
		tree.CursorUp()
	case "down", "j":
		tree.CursorDown()
	case " ":
		tree.Toggle()
	case "enter":
		if a.activeTab != tabBalances {
			return a, nil
		}
		selected := tree.Selected()
		if selected == nil {
			return a, nil
		}
		a.loading = true
		if selected.Leaf() {
			// Leaves open their transaction history; interior nodes
			// re-scope the balance view to their subtree.
			a.status = "Loading transactions for " + selected.FullPath + "..."
			return a, tea.Batch(a.fetchTransactions(selected.FullPath), a.spin.Tick)
		}
		a.status = "Loading balances for " + selected.FullPath + "..."
		return a, tea.Batch(a.fetchBalance(selected.FullPath), a.spin.Tick)
	}
	return a, nil
}

func (a *App) currentTree() *TreeView {
	switch a.activeTab {
	case tabBalances:
		return a.tree
	case tabCashFlow:
		return a.cashTree
	default:
		return nil
	}
}

func (a *App) fail(prefix string, err error) {
	a.loading = false
	a.log.Error(strings.ToLower(prefix), "err", err)
	a.status = errorStyle.Render(fmt.Sprintf("%s: %v", prefix, err))
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	header := a.renderHeader()
	body := a.renderBody()
	status := a.renderStatus()
	footer := footerStyle.Render(padRight(renderHelp(a.keys.ShortHelp()), a.width-4))

	contentHeight := a.height - lipgloss.Height(header) - 2
	if contentHeight < 3 {
		contentHeight = 3
	}
	main := lipgloss.Place(a.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	return header + "\n" + main + "\n" + status + "\n" + footer
}

func (a *App) renderHeader() string {
	parts := make([]string, 0, int(tabCount))
	for t := tab(0); t < tabCount; t++ {
		style := tabStyle
		if t == a.activeTab {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(tabTitles[t]))
	}
	indicator := offlineStyle.Render("○ offline")
	if a.connected {
		indicator = onlineStyle.Render("● online")
	}
	row := strings.Join(parts, " ")
	gap := a.width - lipgloss.Width(row) - lipgloss.Width(indicator) - 2
	if gap < 1 {
		gap = 1
	}
	return row + strings.Repeat(" ", gap) + indicator
}

func (a *App) renderBody() string {
	innerWidth := a.width - boxStyle.GetHorizontalFrameSize() - 2
	innerHeight := a.height - 7
	if innerHeight < 3 {
		innerHeight = 3
	}

	var title, content string
	switch a.activeTab {
	case tabBalances:
		title = "Accounts"
		if a.treeScope != "" {
			title = "Accounts · " + a.treeScope
		}
		content = a.tree.View(innerWidth, innerHeight, a.reg, true)
	case tabTransactions:
		title = "Transactions"
		if a.txAccount != "" {
			title = "Transactions · " + a.txAccount
		}
		content = renderTransactions(a.txRows, a.reg, a.cfg.UI.Currency, innerWidth)
	case tabCashFlow:
		title = "Cash Flow"
		content = a.cashTree.View(innerWidth, innerHeight, a.reg, true)
	case tabBudget:
		title = "Budget"
		content = renderBudget(a.budget, a.reg, a.cfg.UI.Currency, innerWidth)
	case tabExpenses:
		title = "Top Expenses"
		content = expenseChart(a.expenseRows, innerWidth, innerHeight)
	case tabDiff:
		title = fmt.Sprintf("Expenses %s vs %s", a.diffMonths[0], a.diffMonths[1])
		content = diffChart(a.diffRows, innerWidth, innerHeight-1)
		if len(a.diffRows) > 0 {
			content += "\n" + renderDiffTotals(a.diffTotals, a.reg, a.cfg.UI.Currency)
		}
	}

	if a.loading {
		content = a.spin.View() + " " + content
	}
	return titleStyle.Render(title) + "\n" + boxStyle.Width(a.width-2).Render(content)
}

func (a *App) renderStatus() string {
	flat := strings.ReplaceAll(a.status, "\n", " ")
	return statusBarStyle.Render(padRight(flat, a.width-4))
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

func countAccounts(roots []*ledger.Account) int {
	n := 0
	var walk func([]*ledger.Account)
	walk = func(accounts []*ledger.Account) {
		for _, a := range accounts {
			n++
			walk(a.Children)
		}
	}
	walk(roots)
	return n
}
