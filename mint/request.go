package mint

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	RequestStatePending = 10
	RequestStateDone    = 11
	RequestStateDropped = 12

	KindRaffleMint = "MINT:RAFFLE"
	KindAllowMint  = "MINT:ALLOW"
	KindPublicMint = "MINT:PUBLIC"
	KindSetCap     = "ADMIN:CAP"
	KindSetPrice   = "ADMIN:PRICE"
	KindSetRoot    = "ADMIN:ROOT"
	KindSetURIs    = "ADMIN:URIS"
	KindCycle      = "ADMIN:CYCLE"
	KindJump       = "ADMIN:JUMP"
	KindReset      = "ADMIN:RESET"
	KindAirdrop    = "ADMIN:AIRDROP"
	KindWithdraw   = "ADMIN:WITHDRAW"

	ReasonWrongPhase          = "wrong-phase"
	ReasonInsufficientPayment = "insufficient-payment"
	ReasonInvalidProof        = "invalid-proof"
	ReasonSupplyExceeded      = "supply-exceeded"
	ReasonQuotaExceeded       = "quota-exceeded"
	ReasonIndirectCaller      = "indirect-caller"
	ReasonInvalidParameter    = "invalid-parameter"
)

// Request is a queued state-changing operation, public mints and admin
// operations alike. The trace id makes submission idempotent, re-sending an
// already settled trace id changes nothing. All rejections are
// caller-correctable, none indicate corruption.
type Request struct {
	TraceId string
	Kind    string
	State   int
	Reason  string

	Wallet    common.Address
	Origin    common.Address
	Amount    uint64
	Allowance uint64
	Proof     []common.Hash
	Payment   string

	Key       string
	Phase     Phase
	Cap       uint64
	Price     string
	Root      common.Hash
	DawnURI   string
	DuskURI   string
	Recipient common.Address

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Request) StateName() string {
	switch r.State {
	case RequestStatePending:
		return "pending"
	case RequestStateDone:
		return "settled"
	case RequestStateDropped:
		return "dropped"
	}
	panic(r.State)
}
