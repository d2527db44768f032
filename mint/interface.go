package mint

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	PhaseNone Phase = iota
	PhaseRaffle
	PhaseAllow
	PhasePublic
)

type Phase int

func (p Phase) Next() Phase {
	return (p + 1) % 4
}

func (p Phase) Valid() bool {
	return p >= PhaseNone && p <= PhasePublic
}

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseRaffle:
		return "raffle"
	case PhaseAllow:
		return "allow"
	case PhasePublic:
		return "public"
	}
	panic(int(p))
}

// State is the single mutable record every mint checks against. The phase,
// root, cap and price always change together through one store transaction,
// values from a previous phase must never be observable with a new phase.
type State struct {
	Phase     Phase
	Root      common.Hash
	Cap       uint64
	Issued    uint64
	Price     string
	Vault     string
	DawnURI   string
	DuskURI   string
	UpdatedAt time.Time
}

// Quota carries the two per-wallet counters. Records are created lazily at
// zero and never reset, a new phase with a new root renews eligibility but
// not history.
type Quota struct {
	Wallet    common.Address
	Raffle    uint64
	Allow     uint64
	UpdatedAt time.Time
}

type Token struct {
	Id        uint64
	Owner     common.Address
	TraceId   string
	CreatedAt time.Time
}

type Payout struct {
	TraceId   string
	Recipient common.Address
	Amount    string
	CreatedAt time.Time
}

// Effect is the full set of writes a settled request produces. The store
// commits it together with the request state change in one transaction.
type Effect struct {
	State      *State
	IssueOwner common.Address
	IssueFirst uint64
	IssueCount uint64
	Quota      *Quota
	Payout     *Payout
}

type Store interface {
	ReadState() (*State, error)
	WriteGenesisState(s *State) error

	ReadQuota(wallet common.Address) (*Quota, error)

	WriteRequest(r *Request) error
	ReadRequest(traceId string) (*Request, error)
	ListPendingRequests(limit int) ([]*Request, error)
	RejectRequest(traceId, reason string) error
	CommitRequest(r *Request, e *Effect) error

	ReadToken(id uint64) (*Token, error)
	ListTokensForOwner(owner common.Address, limit int) ([]*Token, error)
	ListPayouts(limit int) ([]*Payout, error)
}
