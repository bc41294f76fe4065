package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/abdymaleeq925/tablecrm/internal/order"
)

const listWindow = 5

func (m Model) View() string {
	if m.session.Phase != order.PhaseAuthenticated {
		return m.authView()
	}
	return m.orderView()
}

func (m Model) authView() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, titleStyle.Render("TableCRM point of sale"))
	fmt.Fprintln(b)
	fmt.Fprintln(b, "Cashbox token:")
	fmt.Fprintln(b, " ", m.tokenInput.View())
	if m.session.Busy {
		fmt.Fprintln(b, dimStyle.Render("  authorizing..."))
	}
	if m.session.LastError != "" {
		fmt.Fprintln(b, errorStyle.Render("  "+m.session.LastError))
	}
	fmt.Fprintln(b)
	fmt.Fprintln(b, dimStyle.Render("enter to sign in, esc to quit"))
	return b.String()
}

func (m Model) orderView() string {
	if m.session.Notice != nil {
		return m.noticeView()
	}

	b := &strings.Builder{}
	fmt.Fprintln(b, titleStyle.Render("New sale"))

	m.renderPhone(b)
	m.renderClientList(b)
	m.renderList(b, secAccount, "Account", m.accountLabels(), m.draftLabel(secAccount))
	m.renderList(b, secOrg, "Organization", m.orgLabels(), m.draftLabel(secOrg))
	m.renderList(b, secWarehouse, "Warehouse", m.warehouseLabels(), m.draftLabel(secWarehouse))
	m.renderList(b, secPriceType, "Price type", m.priceTypeLabels(), m.draftLabel(secPriceType))
	m.renderList(b, secProduct, "Products", m.productLabels(), "")
	m.renderCart(b)
	m.renderSubmit(b)

	if len(m.session.Refs.Missing) > 0 {
		fmt.Fprintln(b, dimStyle.Render("unavailable catalogs: "+strings.Join(m.session.Refs.Missing, ", ")))
	}
	if m.session.Busy {
		fmt.Fprintln(b, dimStyle.Render("working..."))
	}
	if m.session.LastError != "" {
		fmt.Fprintln(b, errorStyle.Render(m.session.LastError))
	}
	fmt.Fprintln(b, dimStyle.Render("tab: next section · up/down: select · enter: apply · +/-/x: cart · esc: quit"))
	return b.String()
}

func (m Model) noticeView() string {
	n := m.session.Notice
	msg := "Sale created"
	if n.Posted {
		msg = "Sale created and posted"
	}
	if n.DocID != 0 {
		msg += fmt.Sprintf(" (document #%d)", n.DocID)
	}
	body := successStyle.Render(msg) + "\n\n" + dimStyle.Render("press any key to continue")
	return boxStyle.Render(body)
}

func (m Model) renderPhone(b *strings.Builder) {
	b.WriteString(m.sectionTitle(secPhone, "Client phone"))
	fmt.Fprintln(b, " ", m.phoneInput.View())
	if m.session.Draft.ClientName != "" {
		fmt.Fprintln(b, "  client:", chosenStyle.Render(m.session.Draft.ClientName))
	}
}

func (m Model) renderClientList(b *strings.Builder) {
	if len(m.session.Candidates) == 0 {
		return
	}
	labels := make([]string, len(m.session.Candidates))
	for i, c := range m.session.Candidates {
		labels[i] = c.Name
	}
	m.renderList(b, secClient, "Client name", labels, m.session.Draft.ClientName)
}

func (m Model) renderList(b *strings.Builder, s section, title string, labels []string, chosen string) {
	b.WriteString(m.sectionTitle(s, title))
	if chosen != "" {
		fmt.Fprintln(b, "  selected:", chosenStyle.Render(chosen))
	}
	if len(labels) == 0 {
		fmt.Fprintln(b, dimStyle.Render("  (empty)"))
		return
	}
	if m.section != s {
		return // collapse inactive sections to their header
	}
	lo, hi := window(m.sel[s], len(labels))
	for i := lo; i < hi; i++ {
		marker := " "
		if i == m.sel[s] {
			marker = ">"
		}
		fmt.Fprintf(b, "  %s %s\n", marker, labels[i])
	}
	if hi < len(labels) {
		fmt.Fprintln(b, dimStyle.Render(fmt.Sprintf("  ... %d more", len(labels)-hi)))
	}
}

func (m Model) renderCart(b *strings.Builder) {
	b.WriteString(m.sectionTitle(secCart, "Cart"))
	if m.session.Cart.Empty() {
		fmt.Fprintln(b, dimStyle.Render("  (empty)"))
		return
	}
	for i, l := range m.session.Cart.Lines {
		marker := " "
		if m.section == secCart && i == m.sel[secCart] {
			marker = ">"
		}
		sum := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(b, "  %s %s - %s x %d = %s\n", marker, l.Name, l.Price.String(), l.Quantity, sum.String())
	}
	fmt.Fprintln(b, sectionStyle.Render("  Total: "+m.session.Cart.Total().String()))
}

func (m Model) renderSubmit(b *strings.Builder) {
	b.WriteString(m.sectionTitle(secSubmit, "Submit"))
	createMark, postMark := " ", " "
	if m.submitPost {
		postMark = ">"
	} else {
		createMark = ">"
	}
	fmt.Fprintf(b, "  %s create   %s create and post\n", createMark, postMark)
}

func (m Model) sectionTitle(s section, title string) string {
	if m.section == s {
		return sectionStyle.Render("» "+title) + "\n"
	}
	return dimStyle.Render("  "+title) + "\n"
}

func (m Model) draftLabel(s section) string {
	switch s {
	case secAccount:
		for _, a := range m.session.Refs.Accounts {
			if strconv.Itoa(a.ID) == m.session.Draft.AccountID {
				return a.Name
			}
		}
	case secOrg:
		for _, o := range m.session.Refs.Organizations {
			if strconv.Itoa(o.ID) == m.session.Draft.OrganizationID {
				return o.ShortName
			}
		}
	case secWarehouse:
		for _, w := range m.session.Refs.Warehouses {
			if strconv.Itoa(w.ID) == m.session.Draft.WarehouseID {
				return w.Name
			}
		}
	case secPriceType:
		for _, p := range m.session.Refs.PriceTypes {
			if strconv.Itoa(p.ID) == m.session.Draft.PriceTypeID {
				return p.Name
			}
		}
	}
	return ""
}

func (m Model) accountLabels() []string {
	out := make([]string, len(m.session.Refs.Accounts))
	for i, a := range m.session.Refs.Accounts {
		out[i] = a.Name
	}
	return out
}

func (m Model) orgLabels() []string {
	out := make([]string, len(m.session.Refs.Organizations))
	for i, o := range m.session.Refs.Organizations {
		out[i] = o.ShortName
	}
	return out
}

func (m Model) warehouseLabels() []string {
	out := make([]string, len(m.session.Refs.Warehouses))
	for i, w := range m.session.Refs.Warehouses {
		out[i] = w.Name
	}
	return out
}

func (m Model) priceTypeLabels() []string {
	out := make([]string, len(m.session.Refs.PriceTypes))
	for i, p := range m.session.Refs.PriceTypes {
		out[i] = p.Name
	}
	return out
}

func (m Model) productLabels() []string {
	out := make([]string, len(m.session.Refs.Products))
	for i, p := range m.session.Refs.Products {
		out[i] = fmt.Sprintf("%s - %g", p.NomenclatureName, p.Price)
	}
	return out
}

// window narrows a list to a few rows around the cursor.
func window(cursor, n int) (int, int) {
	lo := cursor - listWindow/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + listWindow
	if hi > n {
		hi = n
		if lo = hi - listWindow; lo < 0 {
			lo = 0
		}
	}
	return lo, hi
}
