package mint

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duskdawn/mintd/merkle"
)

// The mint handlers run precondition checks strictly before building any
// effect, a dropped request touches nothing but its own queue entry. Payment
// above the price stays in the vault, no change is given.

func (e *Engine) raffleMint(s *State, r *Request) (*Effect, string, error) {
	if s.Phase != PhaseRaffle {
		return nil, ReasonWrongPhase, nil
	}
	payment := decimalPanic(r.Payment)
	if payment.Cmp(decimalPanic(s.Price)) < 0 {
		return nil, ReasonInsufficientPayment, nil
	}
	if !merkle.Verify(r.Proof, s.Root, merkle.LeafAddress(r.Wallet)) {
		return nil, ReasonInvalidProof, nil
	}
	if s.Issued+1 > s.Cap {
		return nil, ReasonSupplyExceeded, nil
	}
	q, err := e.store.ReadQuota(r.Wallet)
	if err != nil {
		return nil, "", err
	}
	if q.Raffle != 0 {
		return nil, ReasonQuotaExceeded, nil
	}

	ns := *s
	ns.Issued += 1
	ns.Vault = decimalPanic(s.Vault).Add(payment).String()
	ns.UpdatedAt = time.Now()
	q.Raffle = 1
	q.UpdatedAt = ns.UpdatedAt
	return &Effect{
		State:      &ns,
		IssueOwner: r.Wallet,
		IssueFirst: s.Issued + 1,
		IssueCount: 1,
		Quota:      q,
	}, "", nil
}

func (e *Engine) allowMint(s *State, r *Request) (*Effect, string, error) {
	if r.Amount == 0 {
		return nil, ReasonInvalidParameter, nil
	}
	if s.Phase != PhaseAllow {
		return nil, ReasonWrongPhase, nil
	}
	// bounds every sum below, the allowance itself is bound by the proof
	if r.Amount > r.Allowance {
		return nil, ReasonQuotaExceeded, nil
	}
	payment := decimalPanic(r.Payment)
	cost := decimalPanic(s.Price).Mul(decimalFromUint(r.Amount))
	if payment.Cmp(cost) < 0 {
		return nil, ReasonInsufficientPayment, nil
	}
	leaf := merkle.LeafAllowance(r.Wallet, r.Allowance)
	if !merkle.Verify(r.Proof, s.Root, leaf) {
		return nil, ReasonInvalidProof, nil
	}
	if r.Amount > s.Cap-s.Issued {
		return nil, ReasonSupplyExceeded, nil
	}
	q, err := e.store.ReadQuota(r.Wallet)
	if err != nil {
		return nil, "", err
	}
	if q.Allow >= r.Allowance || r.Amount > r.Allowance-q.Allow {
		return nil, ReasonQuotaExceeded, nil
	}

	ns := *s
	ns.Issued += r.Amount
	ns.Vault = decimalPanic(s.Vault).Add(payment).String()
	ns.UpdatedAt = time.Now()
	q.Allow += r.Amount
	q.UpdatedAt = ns.UpdatedAt
	return &Effect{
		State:      &ns,
		IssueOwner: r.Wallet,
		IssueFirst: s.Issued + 1,
		IssueCount: r.Amount,
		Quota:      q,
	}, "", nil
}

func (e *Engine) publicMint(s *State, r *Request) (*Effect, string) {
	if s.Phase != PhasePublic {
		return nil, ReasonWrongPhase
	}
	if r.Origin != r.Wallet {
		return nil, ReasonIndirectCaller
	}
	payment := decimalPanic(r.Payment)
	if payment.Cmp(decimalPanic(s.Price)) < 0 {
		return nil, ReasonInsufficientPayment
	}
	if s.Issued+1 > s.Cap {
		return nil, ReasonSupplyExceeded
	}

	ns := *s
	ns.Issued += 1
	ns.Vault = decimalPanic(s.Vault).Add(payment).String()
	ns.UpdatedAt = time.Now()
	return &Effect{
		State:      &ns,
		IssueOwner: r.Wallet,
		IssueFirst: s.Issued + 1,
		IssueCount: 1,
	}, ""
}

// decimalPanic parses values the engine wrote or Submit already validated.
func decimalPanic(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(s)
	}
	return d
}

func decimalFromUint(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
