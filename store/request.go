package store

import (
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/duskdawn/mintd/mint"
)

const (
	prefixRequestPayload = "REQUEST:PAYLOAD:"
	prefixRequestState   = "REQUEST:STATE:"
)

// WriteRequest queues a pending request. A trace id that is already known
// is left untouched whatever its state, which makes submission idempotent.
func (bs *BadgerStore) WriteRequest(r *mint.Request) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readRequest(txn, r.TraceId)
		if err != nil || old != nil {
			return err
		}
		key := []byte(prefixRequestPayload + r.TraceId)
		err = txn.Set(key, msgpackMarshalPanic(r))
		if err != nil {
			return err
		}
		return txn.Set(buildRequestTimedKey(r), []byte{1})
	})
}

func (bs *BadgerStore) ReadRequest(traceId string) (*mint.Request, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readRequest(txn, traceId)
}

// ListPendingRequests returns pending requests in creation order, the order
// the engine settles them in.
func (bs *BadgerStore) ListPendingRequests(limit int) ([]*mint.Request, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(requestStatePrefix(mint.RequestStatePending))
	it := txn.NewIterator(opts)
	defer it.Close()

	var rs []*mint.Request
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := string(key[len(opts.Prefix)+8:])
		r, err := bs.readRequest(txn, id)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
		if len(rs) == limit {
			break
		}
	}
	return rs, nil
}

func (bs *BadgerStore) RejectRequest(traceId, reason string) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return bs.finishRequest(txn, traceId, mint.RequestStateDropped, reason)
	})
}

// CommitRequest settles a request and applies its whole effect in one
// transaction, the state record, issued tokens, the quota bump and any
// payout land together or not at all.
func (bs *BadgerStore) CommitRequest(r *mint.Request, e *mint.Effect) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readState(txn)
		if err != nil {
			return err
		}
		if old != nil && e.State.Issued < old.Issued {
			panic(r.TraceId)
		}
		err = bs.writeState(txn, e.State)
		if err != nil {
			return err
		}
		for i := uint64(0); i < e.IssueCount; i++ {
			err = bs.writeToken(txn, &mint.Token{
				Id:        e.IssueFirst + i,
				Owner:     e.IssueOwner,
				TraceId:   r.TraceId,
				CreatedAt: e.State.UpdatedAt,
			})
			if err != nil {
				return err
			}
		}
		if e.Quota != nil {
			err = bs.writeQuota(txn, e.Quota)
			if err != nil {
				return err
			}
		}
		if e.Payout != nil {
			err = bs.writePayout(txn, e.Payout)
			if err != nil {
				return err
			}
		}
		return bs.finishRequest(txn, r.TraceId, mint.RequestStateDone, "")
	})
}

func (bs *BadgerStore) finishRequest(txn *badger.Txn, traceId string, state int, reason string) error {
	r, err := bs.readRequest(txn, traceId)
	if err != nil {
		return err
	}
	if r == nil || r.State != mint.RequestStatePending {
		panic(traceId)
	}
	err = txn.Delete(buildRequestTimedKey(r))
	if err != nil {
		return err
	}
	r.State = state
	r.Reason = reason
	r.UpdatedAt = time.Now()
	key := []byte(prefixRequestPayload + r.TraceId)
	err = txn.Set(key, msgpackMarshalPanic(r))
	if err != nil {
		return err
	}
	return txn.Set(buildRequestTimedKey(r), []byte{1})
}

func (bs *BadgerStore) readRequest(txn *badger.Txn, traceId string) (*mint.Request, error) {
	key := []byte(prefixRequestPayload + traceId)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var r mint.Request
	err = msgpackUnmarshal(val, &r)
	return &r, err
}

func buildRequestTimedKey(r *mint.Request) []byte {
	prefix := requestStatePrefix(r.State)
	key := append([]byte(prefix), tsToBytes(r.CreatedAt)...)
	return append(key, []byte(r.TraceId)...)
}

func requestStatePrefix(state int) string {
	prefix := prefixRequestState
	switch state {
	case mint.RequestStatePending:
		return prefix + "pending"
	case mint.RequestStateDone:
		return prefix + "settled"
	case mint.RequestStateDropped:
		return prefix + "dropped"
	}
	panic(state)
}
