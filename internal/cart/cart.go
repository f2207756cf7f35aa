package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/transport"
)

// Line.Price is the price shown when the item was added. It is for display
// only; checkout reprices every line from the catalog.
type Line struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) find(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Add merges quantity into an existing line, refreshing its name and price.
func (c *Cart) Add(line Line) {
	if line.Quantity <= 0 {
		return
	}
	if i := c.find(line.ID); i >= 0 {
		c.Lines[i].Quantity += line.Quantity
		c.Lines[i].Name = line.Name
		c.Lines[i].Price = line.Price
		return
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity removes the line when qty <= 0. It reports whether id was in the cart.
func (c *Cart) SetQuantity(id string, qty int) bool {
	i := c.find(id)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return true
	}
	c.Lines[i].Quantity = qty
	return true
}

func (c *Cart) Remove(id string) bool {
	return c.SetQuantity(id, 0)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (c *Cart) CheckoutItems() []transport.CartItem {
	items := make([]transport.CartItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		p := l.Price
		items = append(items, transport.CartItem{ID: l.ID, Quantity: l.Quantity, Price: &p})
	}
	return items
}

type View struct {
	Lines    []Line          `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (c *Cart) View() View {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return View{Lines: lines, Count: c.Count(), Subtotal: c.Subtotal()}
}
