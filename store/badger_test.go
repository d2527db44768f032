package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/duskdawn/mintd/mint"
)

func TestGenesisState(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)

	s, err := bs.ReadState()
	require.Nil(err)
	require.Nil(s)

	genesis := &mint.State{Phase: mint.PhaseNone, Cap: 10, Price: "0.1", Vault: "0"}
	require.Nil(bs.WriteGenesisState(genesis))

	// a second seed never clobbers the live record
	require.Nil(bs.WriteGenesisState(&mint.State{Cap: 999}))
	s, err = bs.ReadState()
	require.Nil(err)
	require.Equal(uint64(10), s.Cap)
	require.Equal("0.1", s.Price)
}

func TestRequestQueue(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)

	rs, err := bs.ListPendingRequests(10)
	require.Nil(err)
	require.Len(rs, 0)

	base := time.Now()
	for i := 0; i < 5; i++ {
		err = bs.WriteRequest(&mint.Request{
			TraceId:   fmt.Sprintf("trace-%d", i),
			Kind:      mint.KindPublicMint,
			State:     mint.RequestStatePending,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		})
		require.Nil(err)
	}

	// re-writing a known trace id is a no-op
	err = bs.WriteRequest(&mint.Request{
		TraceId:   "trace-0",
		Kind:      mint.KindRaffleMint,
		State:     mint.RequestStatePending,
		CreatedAt: base.Add(time.Hour),
	})
	require.Nil(err)

	rs, err = bs.ListPendingRequests(3)
	require.Nil(err)
	require.Len(rs, 3)
	require.Equal("trace-0", rs[0].TraceId)
	require.Equal(mint.KindPublicMint, rs[0].Kind)
	require.Equal("trace-2", rs[2].TraceId)

	err = bs.RejectRequest("trace-0", mint.ReasonWrongPhase)
	require.Nil(err)
	rs, err = bs.ListPendingRequests(10)
	require.Nil(err)
	require.Len(rs, 4)
	require.Equal("trace-1", rs[0].TraceId)

	r, err := bs.ReadRequest("trace-0")
	require.Nil(err)
	require.Equal(mint.RequestStateDropped, r.State)
	require.Equal(mint.ReasonWrongPhase, r.Reason)
}

func TestCommitRequest(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)

	genesis := &mint.State{Phase: mint.PhasePublic, Cap: 10, Price: "0.1", Vault: "0"}
	require.Nil(bs.WriteGenesisState(genesis))

	owner := common.BytesToAddress([]byte{0xbe, 0xef})
	r := &mint.Request{
		TraceId:   "trace-commit",
		Kind:      mint.KindPublicMint,
		State:     mint.RequestStatePending,
		Wallet:    owner,
		CreatedAt: time.Now(),
	}
	require.Nil(bs.WriteRequest(r))

	now := time.Now()
	err := bs.CommitRequest(r, &mint.Effect{
		State: &mint.State{
			Phase: mint.PhasePublic, Cap: 10, Issued: 2,
			Price: "0.1", Vault: "0.2", UpdatedAt: now,
		},
		IssueOwner: owner,
		IssueFirst: 1,
		IssueCount: 2,
		Quota:      &mint.Quota{Wallet: owner, Allow: 2, UpdatedAt: now},
		Payout: &mint.Payout{
			TraceId: "trace-commit", Recipient: owner, Amount: "0.2", CreatedAt: now,
		},
	})
	require.Nil(err)

	s, err := bs.ReadState()
	require.Nil(err)
	require.Equal(uint64(2), s.Issued)
	require.Equal("0.2", s.Vault)

	for id := uint64(1); id <= 2; id++ {
		token, err := bs.ReadToken(id)
		require.Nil(err)
		require.Equal(owner, token.Owner)
		require.Equal("trace-commit", token.TraceId)
	}
	missing, err := bs.ReadToken(3)
	require.Nil(err)
	require.Nil(missing)

	tokens, err := bs.ListTokensForOwner(owner, 10)
	require.Nil(err)
	require.Len(tokens, 2)

	q, err := bs.ReadQuota(owner)
	require.Nil(err)
	require.Equal(uint64(2), q.Allow)

	ps, err := bs.ListPayouts(10)
	require.Nil(err)
	require.Len(ps, 1)

	r, err = bs.ReadRequest("trace-commit")
	require.Nil(err)
	require.Equal(mint.RequestStateDone, r.State)
	rs, err := bs.ListPendingRequests(10)
	require.Nil(err)
	require.Len(rs, 0)
}

func TestQuotaDefault(t *testing.T) {
	require := require.New(t)
	bs := testStore(t)

	wallet := common.BytesToAddress([]byte{0x01})
	q, err := bs.ReadQuota(wallet)
	require.Nil(err)
	require.Equal(wallet, q.Wallet)
	require.Equal(uint64(0), q.Raffle)
	require.Equal(uint64(0), q.Allow)
}

func testStore(t *testing.T) *BadgerStore {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	bs, err := OpenBadger(ctx, t.TempDir())
	require.Nil(t, err)
	t.Cleanup(func() { bs.Close() })
	return bs
}
