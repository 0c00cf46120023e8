package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/swytch/paydesk/pkg/config"
)

var ErrTierNotFound = errors.New("membership tier not found")

// Tier is a purchasable membership level. Amount is in whole rupees.
type Tier struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// DefaultTiers is used when config lists none.
var DefaultTiers = []Tier{
	{ID: "membership_basic", Name: "Basic", Amount: 499},
	{ID: "membership_pro", Name: "Pro", Amount: 999},
	{ID: "membership_premium", Name: "Premium", Amount: 1999},
}

// Catalog is immutable after New.
type Catalog struct {
	order []string
	byID  map[string]Tier
}

func New(tiers []Tier) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Tier, len(tiers))}
	for _, t := range tiers {
		t.ID = strings.TrimSpace(t.ID)
		switch {
		case t.ID == "":
			return nil, errors.New("membership tier id is empty")
		case t.Amount <= 0:
			return nil, fmt.Errorf("membership tier %s: amount must be positive", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate membership tier: %s", t.ID)
		}
		c.byID[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c, nil
}

// FromConfig builds the catalog from membership_tiers, or DefaultTiers.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	if cfg == nil || len(cfg.MembershipTiers) == 0 {
		return New(DefaultTiers)
	}
	return New(lo.Map(cfg.MembershipTiers, func(t config.MembershipTier, _ int) Tier {
		return Tier{ID: t.ID, Name: t.Name, Amount: t.Amount}
	}))
}

func (c *Catalog) Lookup(id string) (Tier, error) {
	t, ok := c.byID[id]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %s", ErrTierNotFound, id)
	}
	return t, nil
}

// Tiers returns a copy in configured order.
func (c *Catalog) Tiers() []Tier {
	return lo.Map(c.order, func(id string, _ int) Tier { return c.byID[id] })
}

var Module = fx.Options(
	fx.Provide(FromConfig),
)
