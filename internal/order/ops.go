package order

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abdymaleeq925/tablecrm/internal/crm"
)

// API is the slice of the CRM client the workflow needs. *crm.Client
// satisfies it; tests substitute a fake.
type API interface {
	Contragents(ctx context.Context, token string) (crm.List[crm.Contragent], error)
	SearchContragents(ctx context.Context, token, phone string) (crm.List[crm.Contragent], error)
	Payboxes(ctx context.Context, token string) ([]crm.Paybox, error)
	Organizations(ctx context.Context, token string) ([]crm.Organization, error)
	Warehouses(ctx context.Context, token string) ([]crm.Warehouse, error)
	PriceTypes(ctx context.Context, token string) ([]crm.PriceType, error)
	Prices(ctx context.Context, token string) ([]crm.PriceItem, error)
	CreateSale(ctx context.Context, token string, doc crm.SaleDoc) (crm.SaleResult, error)
}

type AuthResult struct {
	Err error
}

type LookupResult struct {
	Contacts []crm.Contragent
	Err      error
}

type SubmitResult struct {
	Posted bool
	DocID  int
	Number string
	Err    error
}

// Ops performs the network side of the workflow. Each method is one
// suspension point: it issues the calls, classifies failures into the
// taxonomy, and returns a value for the matching Apply transition.
type Ops struct {
	api API
	log *zap.Logger
}

func NewOps(api API, log *zap.Logger) Ops {
	if log == nil {
		log = zap.NewNop()
	}
	return Ops{api: api, log: log}
}

// Authenticate probes the contragents endpoint with the token. A well-formed
// envelope (count present, result non-nil) authenticates the session; a
// detail message, an HTTP failure, or a malformed envelope does not.
func (o Ops) Authenticate(ctx context.Context, token string) AuthResult {
	list, err := o.api.Contragents(ctx, token)
	if err != nil {
		o.log.Warn("authentication failed", zap.Error(err))
		return AuthResult{Err: &AuthError{Msg: authMessage(err), Err: err}}
	}
	if list.Count == nil || list.Result == nil {
		return AuthResult{Err: &AuthError{Msg: "unexpected response format from server"}}
	}
	o.log.Info("authenticated", zap.Int("contragents", *list.Count))
	return AuthResult{}
}

func authMessage(err error) string {
	var apiErr *crm.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return "invalid token"
	}
	return "authorization failed"
}

// LoadReferences fans the five catalog fetches out in parallel and joins
// them. A failing fetch is logged, recorded in Missing, and degrades to an
// empty list; it never aborts the other four.
func (o Ops) LoadReferences(ctx context.Context, token string) (References, error) {
	var (
		refs References
		mu   sync.Mutex
		wg   sync.WaitGroup
	)
	miss := func(catalog string, err error) {
		o.log.Warn("reference catalog load failed", zap.String("catalog", catalog), zap.Error(err))
		mu.Lock()
		refs.Missing = append(refs.Missing, catalog)
		mu.Unlock()
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		v, err := o.api.Payboxes(ctx, token)
		if err != nil {
			miss("payboxes", err)
			return
		}
		refs.Accounts = v
	}()
	go func() {
		defer wg.Done()
		v, err := o.api.Organizations(ctx, token)
		if err != nil {
			miss("organizations", err)
			return
		}
		refs.Organizations = v
	}()
	go func() {
		defer wg.Done()
		v, err := o.api.Warehouses(ctx, token)
		if err != nil {
			miss("warehouses", err)
			return
		}
		refs.Warehouses = v
	}()
	go func() {
		defer wg.Done()
		v, err := o.api.PriceTypes(ctx, token)
		if err != nil {
			miss("price_types", err)
			return
		}
		refs.PriceTypes = v
	}()
	go func() {
		defer wg.Done()
		v, err := o.api.Prices(ctx, token)
		if err != nil {
			miss("prices", err)
			return
		}
		refs.Products = v
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return References{}, &LoadError{Msg: "failed to load reference data", Err: err}
	}
	sort.Strings(refs.Missing)
	refs.Loaded = true
	return refs, nil
}

// LookupClient searches contacts by phone. Zero matches is a LookupError;
// several matches are all returned for the operator to pick from.
func (o Ops) LookupClient(ctx context.Context, token, phone string) LookupResult {
	list, err := o.api.SearchContragents(ctx, token, phone)
	if err != nil {
		o.log.Warn("client lookup failed", zap.String("phone", phone), zap.Error(err))
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return LookupResult{Err: &LookupError{Msg: apiErr.Detail}}
		}
		return LookupResult{Err: &LookupError{Msg: "client search failed"}}
	}
	if len(list.Result) == 0 {
		return LookupResult{Err: &LookupError{Msg: "client not found"}}
	}
	return LookupResult{Contacts: list.Result}
}

// Submit posts the sales document.
func (o Ops) Submit(ctx context.Context, token string, doc crm.SaleDoc) SubmitResult {
	res, err := o.api.CreateSale(ctx, token, doc)
	if err != nil {
		o.log.Warn("sale submission failed", zap.Error(err))
		msg := "failed to create the sale"
		var apiErr *crm.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			msg = apiErr.Detail
		}
		return SubmitResult{Err: &SubmissionError{Msg: msg, Err: err}}
	}
	out := SubmitResult{Posted: doc.Process}
	if len(res.Result) > 0 {
		out.DocID = res.Result[0].ID
		out.Number = res.Result[0].Number
	}
	o.log.Info("sale created",
		zap.Bool("posted", out.Posted),
		zap.Int("doc_id", out.DocID))
	return out
}
