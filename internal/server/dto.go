package server

import (
	"fmt"

	"github.com/peytondoyle/tabby/internal/engine"
	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/money"
)

// The wire format speaks dollars as JSON numbers; everything behind the
// handlers is integer cents. Conversion happens here and nowhere else.

type billRequest struct {
	Title      string         `json:"title"`
	Currency   string         `json:"currency"`
	Subtotal   float64        `json:"subtotal"`
	Tax        float64        `json:"tax"`
	Tip        float64        `json:"tip"`
	ServiceFee float64        `json:"service_fee"`
	Discount   float64        `json:"discount"`
	Total      *float64       `json:"total"`
	PayerID    string         `json:"payer_id"`
	Items      []itemRequest  `json:"items"`
	People     []personInput  `json:"people"`
	Shares     []shareRequest `json:"shares"`
}

type itemRequest struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type personInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type shareRequest struct {
	ItemID   string  `json:"item_id"`
	PersonID string  `json:"person_id"`
	Weight   float64 `json:"weight"`
}

type policyRequest struct {
	Unassigned     string `json:"unassigned"`
	DefaultPayerID string `json:"default_payer_id"`
	StrictTotal    bool   `json:"strict_total"`
}

type previewRequest struct {
	Bill   billRequest    `json:"bill"`
	Policy *policyRequest `json:"policy"`
}

type weightRequest struct {
	Weight float64 `json:"weight"`
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type billResponse struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Currency   string           `json:"currency"`
	Subtotal   float64          `json:"subtotal"`
	Tax        float64          `json:"tax"`
	Tip        float64          `json:"tip"`
	ServiceFee float64          `json:"service_fee"`
	Discount   float64          `json:"discount"`
	Total      *float64         `json:"total"`
	PayerID    string           `json:"payer_id,omitempty"`
	CreatedAt  int64            `json:"created_at"`
	Items      []itemResponse   `json:"items,omitempty"`
	People     []personInput    `json:"people,omitempty"`
	Shares     []shareRequest   `json:"shares,omitempty"`
	Totals     *totalsResponse  `json:"totals,omitempty"`
}

type itemResponse struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type totalsResponse struct {
	PersonTotals []personTotalResponse `json:"person_totals"`
	Diagnostics  diagnosticsResponse   `json:"diagnostics"`
}

type personTotalResponse struct {
	PersonID      string  `json:"person_id"`
	SubtotalShare float64 `json:"subtotal_share"`
	TaxShare      float64 `json:"tax_share"`
	TipShare      float64 `json:"tip_share"`
	FeeShare      float64 `json:"fee_share"`
	DiscountShare float64 `json:"discount_share"`
	Total         float64 `json:"total"`
}

type diagnosticsResponse struct {
	UnassignedItemIDs       []string `json:"unassigned_item_ids,omitempty"`
	UnassignedPool          float64  `json:"unassigned_pool"`
	UnallocatedAncillary    float64  `json:"unallocated_ancillary"`
	NoBasisForSplit         bool     `json:"no_basis_for_split"`
	TotalWasDerived         bool     `json:"total_was_derived"`
	RoundingResidueApplied  []string `json:"rounding_residue_applied_to,omitempty"`
}

type settlementResponse struct {
	Transfers []transferResponse `json:"transfers"`
}

type transferResponse struct {
	From   string  `json:"from_person_id"`
	To     string  `json:"to_person_id"`
	Amount float64 `json:"amount"`
}

func (r billRequest) toModel() (*models.Bill, error) {
	bill := &models.Bill{
		Title:    r.Title,
		Currency: r.Currency,
		PayerID:  r.PayerID,
	}

	var err error
	set := func(dst *money.Cents, dollars float64, field string) {
		if err != nil {
			return
		}
		var c money.Cents
		if c, err = money.FromDollars(dollars); err != nil {
			err = fmt.Errorf("%s: %w", field, err)
			return
		}
		*dst = c
	}
	set(&bill.Subtotal, r.Subtotal, "subtotal")
	set(&bill.Tax, r.Tax, "tax")
	set(&bill.Tip, r.Tip, "tip")
	set(&bill.ServiceFee, r.ServiceFee, "service_fee")
	set(&bill.Discount, r.Discount, "discount")
	if r.Total != nil {
		set(&bill.Total, *r.Total, "total")
		bill.TotalKnown = true
	}
	if err != nil {
		return nil, err
	}

	for i, item := range r.Items {
		price, err := money.FromDollars(item.Price)
		if err != nil {
			return nil, fmt.Errorf("items[%d].price: %w", i, err)
		}
		bill.Items = append(bill.Items, models.Item{
			ID:       item.ID,
			Label:    item.Label,
			Price:    price,
			Quantity: item.Quantity,
		})
	}
	for _, p := range r.People {
		bill.People = append(bill.People, models.Person{ID: p.ID, Name: p.Name})
	}
	for _, s := range r.Shares {
		bill.Shares = append(bill.Shares, models.ItemShare{
			ItemID:   s.ItemID,
			PersonID: s.PersonID,
			Weight:   s.Weight,
		})
	}
	return bill, nil
}

func (r policyRequest) toPolicy() engine.Policy {
	return engine.Policy{
		Unassigned:     engine.UnassignedPolicy(r.Unassigned),
		DefaultPayerID: r.DefaultPayerID,
		StrictTotal:    r.StrictTotal,
	}
}

func toBillResponse(bill *models.Bill, res *engine.Result) billResponse {
	out := billResponse{
		ID:         bill.ID,
		Title:      bill.Title,
		Currency:   bill.Currency,
		Subtotal:   bill.Subtotal.Dollars(),
		Tax:        bill.Tax.Dollars(),
		Tip:        bill.Tip.Dollars(),
		ServiceFee: bill.ServiceFee.Dollars(),
		Discount:   bill.Discount.Dollars(),
		PayerID:    bill.PayerID,
		CreatedAt:  bill.CreatedAt,
	}
	if bill.TotalKnown {
		total := bill.Total.Dollars()
		out.Total = &total
	}
	for _, item := range bill.Items {
		out.Items = append(out.Items, itemResponse{
			ID:       item.ID,
			Label:    item.Label,
			Price:    item.Price.Dollars(),
			Quantity: item.Quantity,
		})
	}
	for _, p := range bill.People {
		out.People = append(out.People, personInput{ID: p.ID, Name: p.Name})
	}
	for _, s := range bill.Shares {
		out.Shares = append(out.Shares, shareRequest{ItemID: s.ItemID, PersonID: s.PersonID, Weight: s.Weight})
	}
	if res != nil {
		totals := toTotalsResponse(res)
		out.Totals = &totals
	}
	return out
}

func toTotalsResponse(res *engine.Result) totalsResponse {
	out := totalsResponse{
		PersonTotals: make([]personTotalResponse, 0, len(res.PersonTotals)),
		Diagnostics: diagnosticsResponse{
			UnassignedItemIDs:      res.Diagnostics.UnassignedItemIDs,
			UnassignedPool:         res.Diagnostics.UnassignedPoolCents.Dollars(),
			UnallocatedAncillary:   res.Diagnostics.UnallocatedAncillaryCents.Dollars(),
			NoBasisForSplit:        res.Diagnostics.NoBasisForSplit,
			TotalWasDerived:        res.Diagnostics.TotalWasDerived,
			RoundingResidueApplied: res.Diagnostics.RoundingResidueAppliedTo,
		},
	}
	for _, t := range res.PersonTotals {
		out.PersonTotals = append(out.PersonTotals, personTotalResponse{
			PersonID:      t.PersonID,
			SubtotalShare: t.SubtotalShare.Dollars(),
			TaxShare:      t.TaxShare.Dollars(),
			TipShare:      t.TipShare.Dollars(),
			FeeShare:      t.FeeShare.Dollars(),
			DiscountShare: t.DiscountShare.Dollars(),
			Total:         t.Total.Dollars(),
		})
	}
	return out
}

func toSettlementResponse(edges []engine.DebtEdge) settlementResponse {
	out := settlementResponse{Transfers: make([]transferResponse, 0, len(edges))}
	for _, e := range edges {
		out.Transfers = append(out.Transfers, transferResponse{
			From:   e.FromPersonID,
			To:     e.ToPersonID,
			Amount: e.Amount.Dollars(),
		})
	}
	return out
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}
