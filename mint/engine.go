package mint

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/duskdawn/mintd/logger"
)

const (
	// SupplyCeiling bounds every cap the operator may install.
	SupplyCeiling = 8192
	// AirdropLimit bounds a single bulk issuance call.
	AirdropLimit = 64

	drainBatchSize = 16
	drainInterval  = 100 * time.Millisecond
)

// Engine drains the request queue one operation to completion at a time.
// That single goroutine is the mutual exclusion around every
// read-check-increment sequence, the store transaction under each commit
// guarantees no partial effect survives a failed precondition.
type Engine struct {
	store Store
	conf  *Configuration
}

func BuildEngine(store Store, conf *Configuration) (*Engine, error) {
	if conf.Admin.Key == "" {
		return nil, fmt.Errorf("empty admin key")
	}
	if conf.Mint.Cap > SupplyCeiling {
		return nil, fmt.Errorf("genesis cap %d over ceiling %d", conf.Mint.Cap, SupplyCeiling)
	}
	price := conf.Mint.Price
	if price == "" {
		price = "0"
	}
	if _, err := decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid genesis price %s", conf.Mint.Price)
	}

	genesis := &State{
		Phase:     PhaseNone,
		Cap:       conf.Mint.Cap,
		Price:     price,
		Vault:     "0",
		DawnURI:   conf.Mint.DawnURI,
		DuskURI:   conf.Mint.DuskURI,
		UpdatedAt: time.Now(),
	}
	err := store.WriteGenesisState(genesis)
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, conf: conf}, nil
}

func (e *Engine) Run(ctx context.Context) {
	log := logger.Logger()
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := e.drainRequests(ctx, drainBatchSize)
		if err != nil {
			log.Error().Err(err).Msg("drain requests")
			time.Sleep(3 * time.Second)
			continue
		}
		if n == 0 {
			time.Sleep(drainInterval)
		}
	}
}

// Submit queues a request for the engine loop. The trace id must be set by
// the caller, re-submitting a known trace id is a no-op.
func (e *Engine) Submit(ctx context.Context, r *Request) error {
	if r.TraceId == "" {
		return fmt.Errorf("empty trace id")
	}
	if r.Payment == "" {
		r.Payment = "0"
	}
	if _, err := decimal.NewFromString(r.Payment); err != nil {
		return fmt.Errorf("invalid payment %s", r.Payment)
	}
	switch r.Kind {
	case KindRaffleMint, KindAllowMint, KindPublicMint:
		if r.Wallet == (common.Address{}) {
			return fmt.Errorf("empty wallet")
		}
	case KindSetCap, KindSetPrice, KindSetRoot, KindSetURIs,
		KindCycle, KindJump, KindReset, KindAirdrop, KindWithdraw:
	default:
		return fmt.Errorf("unknown request kind %s", r.Kind)
	}
	r.State = RequestStatePending
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	return e.store.WriteRequest(r)
}

func (e *Engine) drainRequests(ctx context.Context, batch int) (int, error) {
	rs, err := e.store.ListPendingRequests(batch)
	if err != nil {
		return 0, err
	}
	for _, r := range rs {
		err = e.processRequest(ctx, r)
		if err != nil {
			return 0, err
		}
	}
	return len(rs), nil
}

func (e *Engine) processRequest(ctx context.Context, r *Request) error {
	log := logger.Logger()
	s, err := e.store.ReadState()
	if err != nil {
		return err
	}

	var effect *Effect
	var reason string
	switch r.Kind {
	case KindRaffleMint:
		effect, reason, err = e.raffleMint(s, r)
	case KindAllowMint:
		effect, reason, err = e.allowMint(s, r)
	case KindPublicMint:
		effect, reason = e.publicMint(s, r)
	default:
		effect, reason = e.adminRequest(s, r)
	}
	if err != nil {
		return err
	}

	if reason != "" {
		log.Info().Str("kind", r.Kind).Str("trace", r.TraceId).
			Str("reason", reason).Msg("request dropped")
		return e.store.RejectRequest(r.TraceId, reason)
	}
	log.Info().Str("kind", r.Kind).Str("trace", r.TraceId).
		Str("phase", effect.State.Phase.String()).
		Uint64("issued", effect.State.Issued).Msg("request settled")
	return e.store.CommitRequest(r, effect)
}

func (e *Engine) ReadState() (*State, error) {
	return e.store.ReadState()
}
