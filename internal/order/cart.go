package order

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/abdymaleeq925/tablecrm/internal/crm"
)

// Line is one product entry of the draft order, keyed by nomenclature id.
type Line struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered sequence of lines. A product id appears at most once:
// adding a product that is already present bumps its quantity instead of
// appending a duplicate line.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) Add(p crm.PriceItem) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.NomenclatureID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID: p.NomenclatureID,
		Name:      p.NomenclatureName,
		Price:     decimal.NewFromFloat(p.Price),
		Quantity:  1,
	})
}

// SetQuantity coerces raw to an integer and clamps it to a minimum of 1;
// non-numeric input silently becomes 1. Out-of-range indexes are ignored.
func (c *Cart) SetQuantity(idx int, raw string) {
	if idx < 0 || idx >= len(c.Lines) {
		return
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q < 1 {
		q = 1
	}
	c.Lines[idx].Quantity = q
}

func (c *Cart) Remove(idx int) {
	if idx < 0 || idx >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Total is the sum of price times quantity across all lines, recomputed on
// every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Goods renders the cart as sale payload lines, prices converted back to the
// CRM's JSON number format.
func (c *Cart) Goods() []crm.SaleGood {
	goods := make([]crm.SaleGood, 0, len(c.Lines))
	for _, l := range c.Lines {
		goods = append(goods, crm.SaleGood{
			Nomenclature: l.ProductID,
			Quantity:     l.Quantity,
			Price:        l.Price.InexactFloat64(),
		})
	}
	return goods
}
