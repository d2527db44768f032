package store

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/duskdawn/mintd/mint"
)

const (
	keyStatePayload = "MINT:STATE:PAYLOAD"

	prefixQuotaPayload = "MINT:QUOTA:WALLET:"
)

func (bs *BadgerStore) ReadState() (*mint.State, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readState(txn)
}

// WriteGenesisState seeds the state record, it does nothing when one
// already exists so a restart keeps the live values.
func (bs *BadgerStore) WriteGenesisState(s *mint.State) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readState(txn)
		if err != nil || old != nil {
			return err
		}
		return bs.writeState(txn, s)
	})
}

func (bs *BadgerStore) ReadQuota(wallet common.Address) (*mint.Quota, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readQuota(txn, wallet)
}

func (bs *BadgerStore) readState(txn *badger.Txn) (*mint.State, error) {
	item, err := txn.Get([]byte(keyStatePayload))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var s mint.State
	err = msgpackUnmarshal(val, &s)
	return &s, err
}

func (bs *BadgerStore) writeState(txn *badger.Txn, s *mint.State) error {
	return txn.Set([]byte(keyStatePayload), msgpackMarshalPanic(s))
}

func (bs *BadgerStore) readQuota(txn *badger.Txn, wallet common.Address) (*mint.Quota, error) {
	key := append([]byte(prefixQuotaPayload), wallet.Bytes()...)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return &mint.Quota{Wallet: wallet}, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var q mint.Quota
	err = msgpackUnmarshal(val, &q)
	return &q, err
}

func (bs *BadgerStore) writeQuota(txn *badger.Txn, q *mint.Quota) error {
	old, err := bs.readQuota(txn, q.Wallet)
	if err != nil {
		return err
	}
	if old.Raffle > q.Raffle || old.Allow > q.Allow {
		panic(q.Wallet.Hex())
	}
	key := append([]byte(prefixQuotaPayload), q.Wallet.Bytes()...)
	return txn.Set(key, msgpackMarshalPanic(q))
}
