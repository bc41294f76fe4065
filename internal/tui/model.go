// Package tui is the terminal front-end of the order form: a thin bubbletea
// wrapper over order.Session. Update applies pure transitions; all network
// work happens inside tea.Cmd closures that come back as typed messages.
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdymaleeq925/tablecrm/internal/order"
)

type section int

const (
	secPhone section = iota
	secClient
	secAccount
	secOrg
	secWarehouse
	secPriceType
	secProduct
	secCart
	secSubmit
	sectionCount
)

type (
	authMsg   order.AuthResult
	lookupMsg order.LookupResult
	submitMsg order.SubmitResult

	refsMsg struct {
		refs order.References
		err  error
	}
)

type Model struct {
	session order.Session
	ops     order.Ops

	tokenInput textinput.Model
	phoneInput textinput.Model

	section    section
	sel        [sectionCount]int
	submitPost bool // highlighted submit action: false=create, true=create and post
	width      int
}

func New(ops order.Ops, token string) Model {
	ti := textinput.New()
	ti.Placeholder = "cashbox token"
	ti.CharLimit = 128
	ti.SetValue(token)
	ti.Focus()

	pi := textinput.New()
	pi.Placeholder = "+7 (XXX) XXX-XX-XX"
	pi.CharLimit = 32

	s := order.NewSession()
	s.Token = token
	return Model{
		session:    s,
		ops:        ops,
		tokenInput: ti,
		phoneInput: pi,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case authMsg:
		m.session.ApplyAuth(order.AuthResult(msg))
		if m.session.Phase == order.PhaseAuthenticated {
			m.session.Busy = true
			m.phoneInput.Focus()
			m.tokenInput.Blur()
			return m, m.loadRefsCmd()
		}
		return m, nil

	case refsMsg:
		m.session.Busy = false
		if msg.err != nil {
			m.session.LastError = msg.err.Error()
			return m, nil
		}
		m.session.ApplyReferences(msg.refs)
		return m, nil

	case lookupMsg:
		m.session.ApplyLookup(order.LookupResult(msg))
		if len(m.session.Candidates) > 0 {
			m.section = secClient
			m.sel[secClient] = 0
			m.phoneInput.Blur()
		}
		return m, nil

	case submitMsg:
		m.session.ApplySubmit(order.SubmitResult(msg))
		if m.session.Notice != nil {
			m.phoneInput.SetValue("")
			m.section = secPhone
			m.phoneInput.Focus()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// The success dialog is modal: any key dismisses it.
	if m.session.Notice != nil {
		m.session.DismissNotice()
		return m, nil
	}

	if m.session.Busy {
		return m, nil
	}

	if m.session.Phase != order.PhaseAuthenticated {
		return m.handleAuthKey(msg)
	}
	return m.handleOrderKey(msg)
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		m.session.Token = m.tokenInput.Value()
		if err := m.session.StartAuth(); err != nil {
			return m, nil
		}
		return m, m.authCmd()
	}
	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	if m.session.LastError != "" {
		m.session.ClearError()
	}
	return m, cmd
}

func (m Model) handleOrderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.section = m.nextSection(m.section, 1)
		m.syncPhoneFocus()
		return m, nil
	case "shift+tab":
		m.section = m.nextSection(m.section, -1)
		m.syncPhoneFocus()
		return m, nil
	}

	if m.section == secPhone {
		return m.handlePhoneKey(msg)
	}

	switch msg.String() {
	case "up":
		if m.sel[m.section] > 0 {
			m.sel[m.section]--
		}
		return m, nil
	case "down":
		if m.sel[m.section] < m.sectionLen(m.section)-1 {
			m.sel[m.section]++
		}
		return m, nil
	case "left", "right":
		if m.section == secSubmit {
			m.submitPost = !m.submitPost
		}
		return m, nil
	case "enter":
		return m.activate()
	case "+", "=":
		if m.section == secCart {
			m.bumpQuantity(1)
		}
		return m, nil
	case "-":
		if m.section == secCart {
			m.bumpQuantity(-1)
		}
		return m, nil
	case "x", "backspace":
		if m.section == secCart {
			idx := m.sel[secCart]
			m.session.Cart.Remove(idx)
			if idx >= len(m.session.Cart.Lines) && idx > 0 {
				m.sel[secCart] = idx - 1
			}
		}
		return m, nil
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handlePhoneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.session.Draft.ClientPhone = m.phoneInput.Value()
		if err := m.session.StartLookup(); err != nil {
			return m, nil
		}
		return m, m.lookupCmd()
	}
	var cmd tea.Cmd
	m.phoneInput, cmd = m.phoneInput.Update(msg)
	m.session.Draft.ClientPhone = m.phoneInput.Value()
	return m, cmd
}

// activate applies the current selection of a list section.
func (m Model) activate() (tea.Model, tea.Cmd) {
	idx := m.sel[m.section]
	switch m.section {
	case secClient:
		if idx < len(m.session.Candidates) {
			m.session.SelectClient(m.session.Candidates[idx].ID)
		}
	case secAccount:
		if idx < len(m.session.Refs.Accounts) {
			m.session.Draft.AccountID = strconv.Itoa(m.session.Refs.Accounts[idx].ID)
		}
	case secOrg:
		if idx < len(m.session.Refs.Organizations) {
			m.session.Draft.OrganizationID = strconv.Itoa(m.session.Refs.Organizations[idx].ID)
		}
	case secWarehouse:
		if idx < len(m.session.Refs.Warehouses) {
			m.session.Draft.WarehouseID = strconv.Itoa(m.session.Refs.Warehouses[idx].ID)
		}
	case secPriceType:
		if idx < len(m.session.Refs.PriceTypes) {
			m.session.Draft.PriceTypeID = strconv.Itoa(m.session.Refs.PriceTypes[idx].ID)
		}
	case secProduct:
		if idx < len(m.session.Refs.Products) {
			m.session.AddProduct(m.session.Refs.Products[idx].NomenclatureID)
		}
	case secSubmit:
		if err := m.session.StartSubmit(); err != nil {
			return m, nil
		}
		return m, m.submitCmd(m.submitPost)
	}
	return m, nil
}

func (m *Model) bumpQuantity(delta int) {
	idx := m.sel[secCart]
	if idx < 0 || idx >= len(m.session.Cart.Lines) {
		return
	}
	m.session.Cart.SetQuantity(idx, strconv.Itoa(m.session.Cart.Lines[idx].Quantity+delta))
}

// nextSection steps through sections, skipping the client list while there
// are no lookup candidates and the cart while it is empty.
func (m Model) nextSection(s section, step int) section {
	for {
		s = section((int(s) + step + int(sectionCount)) % int(sectionCount))
		if s == secClient && len(m.session.Candidates) == 0 {
			continue
		}
		if s == secCart && m.session.Cart.Empty() {
			continue
		}
		return s
	}
}

func (m *Model) syncPhoneFocus() {
	if m.section == secPhone {
		m.phoneInput.Focus()
	} else {
		m.phoneInput.Blur()
	}
}

func (m Model) sectionLen(s section) int {
	switch s {
	case secClient:
		return len(m.session.Candidates)
	case secAccount:
		return len(m.session.Refs.Accounts)
	case secOrg:
		return len(m.session.Refs.Organizations)
	case secWarehouse:
		return len(m.session.Refs.Warehouses)
	case secPriceType:
		return len(m.session.Refs.PriceTypes)
	case secProduct:
		return len(m.session.Refs.Products)
	case secCart:
		return len(m.session.Cart.Lines)
	}
	return 0
}

func (m Model) authCmd() tea.Cmd {
	ops, token := m.ops, m.session.Token
	return func() tea.Msg {
		return authMsg(ops.Authenticate(context.Background(), token))
	}
}

func (m Model) loadRefsCmd() tea.Cmd {
	ops, token := m.ops, m.session.Token
	return func() tea.Msg {
		refs, err := ops.LoadReferences(context.Background(), token)
		return refsMsg{refs: refs, err: err}
	}
}

func (m Model) lookupCmd() tea.Cmd {
	ops, token, phone := m.ops, m.session.Token, m.session.Draft.ClientPhone
	return func() tea.Msg {
		return lookupMsg(ops.LookupClient(context.Background(), token, phone))
	}
}

func (m Model) submitCmd(post bool) tea.Cmd {
	ops, token, doc := m.ops, m.session.Token, m.session.SaleDoc(post)
	return func() tea.Msg {
		return submitMsg(ops.Submit(context.Background(), token, doc))
	}
}
