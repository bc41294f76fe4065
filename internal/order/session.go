// Package order holds the point-of-sale workflow as an explicit state object
// with pure transition functions. All network effects live behind Ops; the
// transitions here never touch I/O, so the whole flow tests as plain values.
package order

import (
	"strconv"
	"strings"

	"github.com/abdymaleeq925/tablecrm/internal/crm"
)

type Phase string

const (
	PhaseUnauthenticated Phase = "UNAUTHENTICATED"
	PhaseAuthenticating  Phase = "AUTHENTICATING"
	PhaseAuthenticated   Phase = "AUTHENTICATED"
)

// Draft is the order being assembled. Identifier fields stay raw strings
// until submission, when they are coerced to numeric ids.
type Draft struct {
	ClientPhone    string `json:"client_phone"`
	ClientName     string `json:"client_name"`
	AccountID      string `json:"account_id"`
	OrganizationID string `json:"organization_id"`
	WarehouseID    string `json:"warehouse_id"`
	PriceTypeID    string `json:"price_type_id"`
}

// References are the five read-only catalogs fetched once per authenticated
// session. Missing names the catalogs whose fetch failed; those degrade to
// empty lists instead of aborting the load.
type References struct {
	Accounts      []crm.Paybox       `json:"accounts"`
	Organizations []crm.Organization `json:"organizations"`
	Warehouses    []crm.Warehouse    `json:"warehouses"`
	PriceTypes    []crm.PriceType    `json:"price_types"`
	Products      []crm.PriceItem    `json:"products"`
	Missing       []string           `json:"missing,omitempty"`
	Loaded        bool               `json:"loaded"`
}

// Notice is the one-shot success notification shown after a submission.
type Notice struct {
	Posted bool   `json:"posted"`
	DocID  int    `json:"doc_id,omitempty"`
	Number string `json:"number,omitempty"`
}

// Session is the complete serializable state of one operator session.
type Session struct {
	Token      string           `json:"token"`
	Phase      Phase            `json:"phase"`
	Busy       bool             `json:"busy"`
	Draft      Draft            `json:"draft"`
	Cart       Cart             `json:"cart"`
	Refs       References       `json:"refs"`
	Candidates []crm.Contragent `json:"candidates,omitempty"`
	LastError  string           `json:"last_error,omitempty"`
	Notice     *Notice          `json:"notice,omitempty"`
}

func NewSession() Session {
	return Session{Phase: PhaseUnauthenticated}
}

// StartAuth gates authentication on a non-empty token. On validation failure
// no network call may follow.
func (s *Session) StartAuth() error {
	if strings.TrimSpace(s.Token) == "" {
		err := &ValidationError{Msg: "enter the cashbox token"}
		s.LastError = err.Msg
		return err
	}
	s.Phase = PhaseAuthenticating
	s.Busy = true
	s.LastError = ""
	return nil
}

func (s *Session) ApplyAuth(res AuthResult) {
	s.Busy = false
	if res.Err != nil {
		s.Phase = PhaseUnauthenticated
		s.LastError = res.Err.Error()
		return
	}
	s.Phase = PhaseAuthenticated
}

func (s *Session) ApplyReferences(refs References) {
	s.Refs = refs
}

// StartLookup gates the phone search on a non-empty phone field.
func (s *Session) StartLookup() error {
	if strings.TrimSpace(s.Draft.ClientPhone) == "" {
		err := &ValidationError{Msg: "enter the client phone number"}
		s.LastError = err.Msg
		return err
	}
	s.Busy = true
	s.LastError = ""
	return nil
}

func (s *Session) ApplyLookup(res LookupResult) {
	s.Busy = false
	if res.Err != nil {
		s.LastError = res.Err.Error()
		return
	}
	s.Candidates = res.Contacts
}

// SelectClient fills the draft's client name from a lookup candidate.
func (s *Session) SelectClient(id int) {
	for _, c := range s.Candidates {
		if c.ID == id {
			s.Draft.ClientName = c.Name
			return
		}
	}
}

// AddProduct locates a catalog product by nomenclature id and merges it into
// the cart. Returns false when the id is not in the loaded catalog.
func (s *Session) AddProduct(nomenclatureID int) bool {
	for _, p := range s.Refs.Products {
		if p.NomenclatureID == nomenclatureID {
			s.Cart.Add(p)
			return true
		}
	}
	return false
}

// StartSubmit gates submission on a non-empty cart.
func (s *Session) StartSubmit() error {
	if s.Cart.Empty() {
		err := &ValidationError{Msg: "add products to the cart first"}
		s.LastError = err.Msg
		return err
	}
	s.Busy = true
	s.LastError = ""
	return nil
}

// SaleDoc builds the submission payload: draft identifiers coerced to
// numbers, cart rendered as goods, post flag carried through.
func (s *Session) SaleDoc(post bool) crm.SaleDoc {
	return crm.SaleDoc{
		ClientPhone:  s.Draft.ClientPhone,
		AccountID:    atoiOrZero(s.Draft.AccountID),
		Organization: atoiOrZero(s.Draft.OrganizationID),
		Warehouse:    atoiOrZero(s.Draft.WarehouseID),
		PriceType:    atoiOrZero(s.Draft.PriceTypeID),
		Goods:        s.Cart.Goods(),
		Process:      post,
	}
}

// ApplySubmit finishes a submission attempt. Success clears the cart and the
// draft and raises the one-shot notice; lookup candidates and reference
// catalogs survive for the next order in the same session. Failure leaves
// everything in place so the operator can retry.
func (s *Session) ApplySubmit(res SubmitResult) {
	s.Busy = false
	if res.Err != nil {
		s.LastError = res.Err.Error()
		return
	}
	s.Notice = &Notice{Posted: res.Posted, DocID: res.DocID, Number: res.Number}
	s.Cart.Clear()
	s.Draft = Draft{}
	s.LastError = ""
}

func (s *Session) DismissNotice() {
	s.Notice = nil
}

func (s *Session) ClearError() {
	s.LastError = ""
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
