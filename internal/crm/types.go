package crm

// List is the envelope TableCRM wraps every list endpoint in. Count is a
// pointer so a missing field is distinguishable from zero; authentication
// treats its absence as a malformed response. Detail carries server-side
// error text and its presence marks the call as failed regardless of status.
type List[T any] struct {
	Count  *int   `json:"count"`
	Result []T    `json:"result"`
	Detail string `json:"detail,omitempty"`
}

// Contragent is a CRM contact (a client of the point of sale).
type Contragent struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Paybox is a payment account.
type Paybox struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Organization struct {
	ID        int    `json:"id"`
	ShortName string `json:"short_name"`
	FullName  string `json:"full_name,omitempty"`
}

type Warehouse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PriceType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PriceItem is one row of the priced product catalog. The catalog row id and
// the nomenclature (product) id are distinct; the cart and the sale payload
// key on the nomenclature id.
type PriceItem struct {
	ID               int     `json:"id"`
	NomenclatureID   int     `json:"nomenclature_id"`
	NomenclatureName string  `json:"nomenclature_name"`
	Price            float64 `json:"price"`
}

// SaleGood is one line of a sales document payload.
type SaleGood struct {
	Nomenclature int     `json:"nomenclature"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

// SaleDoc is a sales document. The endpoint accepts a batch (JSON array);
// the client always sends a single-element batch.
type SaleDoc struct {
	ClientPhone  string     `json:"client_phone"`
	AccountID    int        `json:"account_id"`
	Organization int        `json:"organization"`
	Warehouse    int        `json:"warehouse"`
	PriceType    int        `json:"price_type"`
	Goods        []SaleGood `json:"goods"`
	Process      bool       `json:"process"`
}

// SaleResult is the (loosely specified) response of docs_sales. The server
// echoes created documents under result; only the id and number are read.
type SaleResult struct {
	Result []CreatedDoc `json:"result"`
	Detail string       `json:"detail,omitempty"`
}

type CreatedDoc struct {
	ID     int    `json:"id"`
	Number string `json:"number,omitempty"`
}
