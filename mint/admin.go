package mint

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// adminRequest settles the operator-only operations. A bad key or a bad
// parameter is an ordinary rejection, never a fault.
func (e *Engine) adminRequest(s *State, r *Request) (*Effect, string) {
	if r.Key != e.conf.Admin.Key {
		return nil, ReasonInvalidParameter
	}

	switch r.Kind {
	case KindSetCap:
		if !validCap(r.Cap, s.Issued) {
			return nil, ReasonInvalidParameter
		}
		ns := *s
		ns.Cap = r.Cap
		ns.UpdatedAt = time.Now()
		return &Effect{State: &ns}, ""
	case KindSetPrice:
		price, err := decimal.NewFromString(r.Price)
		if err != nil || price.IsNegative() {
			return nil, ReasonInvalidParameter
		}
		ns := *s
		ns.Price = price.String()
		ns.UpdatedAt = time.Now()
		return &Effect{State: &ns}, ""
	case KindSetRoot:
		if r.Root == (common.Hash{}) {
			return nil, ReasonInvalidParameter
		}
		ns := *s
		ns.Root = r.Root
		ns.UpdatedAt = time.Now()
		return &Effect{State: &ns}, ""
	case KindSetURIs:
		if r.DawnURI == "" || r.DuskURI == "" {
			return nil, ReasonInvalidParameter
		}
		ns := *s
		ns.DawnURI = r.DawnURI
		ns.DuskURI = r.DuskURI
		ns.UpdatedAt = time.Now()
		return &Effect{State: &ns}, ""
	case KindCycle:
		return e.installPhase(s, r, s.Phase.Next())
	case KindJump:
		if !r.Phase.Valid() {
			return nil, ReasonInvalidParameter
		}
		return e.installPhase(s, r, r.Phase)
	case KindReset:
		ns := *s
		ns.Phase = PhaseNone
		ns.Root = common.Hash{}
		ns.UpdatedAt = time.Now()
		return &Effect{State: &ns}, ""
	case KindAirdrop:
		if r.Amount == 0 || r.Amount > AirdropLimit {
			return nil, ReasonInvalidParameter
		}
		if r.Recipient == (common.Address{}) {
			return nil, ReasonInvalidParameter
		}
		if s.Issued+r.Amount > s.Cap {
			return nil, ReasonSupplyExceeded
		}
		ns := *s
		ns.Issued += r.Amount
		ns.UpdatedAt = time.Now()
		return &Effect{
			State:      &ns,
			IssueOwner: r.Recipient,
			IssueFirst: s.Issued + 1,
			IssueCount: r.Amount,
		}, ""
	case KindWithdraw:
		if r.Recipient == (common.Address{}) {
			return nil, ReasonInvalidParameter
		}
		ns := *s
		ns.Vault = "0"
		ns.UpdatedAt = time.Now()
		return &Effect{
			State: &ns,
			Payout: &Payout{
				TraceId:   r.TraceId,
				Recipient: r.Recipient,
				Amount:    s.Vault,
				CreatedAt: ns.UpdatedAt,
			},
		}, ""
	}
	panic(r.Kind)
}

// installPhase moves to the target phase and installs the root, cap and
// price the request carries, all in the one effect the store commits
// atomically. Entering a mint phase with a zero root would strand it, so
// raffle and allow require one.
func (e *Engine) installPhase(s *State, r *Request, target Phase) (*Effect, string) {
	if !validCap(r.Cap, s.Issued) {
		return nil, ReasonInvalidParameter
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil || price.IsNegative() {
		return nil, ReasonInvalidParameter
	}
	if r.Root == (common.Hash{}) && (target == PhaseRaffle || target == PhaseAllow) {
		return nil, ReasonInvalidParameter
	}
	ns := *s
	ns.Phase = target
	ns.Root = r.Root
	ns.Cap = r.Cap
	ns.Price = price.String()
	ns.UpdatedAt = time.Now()
	return &Effect{State: &ns}, ""
}

func validCap(cap, issued uint64) bool {
	return cap > issued && cap <= SupplyCeiling
}
