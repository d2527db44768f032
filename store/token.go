package store

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/duskdawn/mintd/mint"
)

const (
	prefixTokenPayload = "TOKEN:PAYLOAD:"
	prefixTokenOwner   = "TOKEN:OWNER:"
)

func (bs *BadgerStore) ReadToken(id uint64) (*mint.Token, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readToken(txn, id)
}

func (bs *BadgerStore) ListTokensForOwner(owner common.Address, limit int) ([]*mint.Token, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = append([]byte(prefixTokenOwner), owner.Bytes()...)
	it := txn.NewIterator(opts)
	defer it.Close()

	var tokens []*mint.Token
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := bytesToId(key[len(opts.Prefix):])
		t, err := bs.readToken(txn, id)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
		if len(tokens) == limit {
			break
		}
	}
	return tokens, nil
}

func (bs *BadgerStore) writeToken(txn *badger.Txn, t *mint.Token) error {
	old, err := bs.readToken(txn, t.Id)
	if err != nil {
		return err
	}
	if old != nil {
		panic(t.Id)
	}
	key := append([]byte(prefixTokenPayload), idToBytes(t.Id)...)
	err = txn.Set(key, msgpackMarshalPanic(t))
	if err != nil {
		return err
	}
	key = append([]byte(prefixTokenOwner), t.Owner.Bytes()...)
	key = append(key, idToBytes(t.Id)...)
	return txn.Set(key, []byte{1})
}

func (bs *BadgerStore) readToken(txn *badger.Txn, id uint64) (*mint.Token, error) {
	key := append([]byte(prefixTokenPayload), idToBytes(id)...)
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
	var t mint.Token
	err = msgpackUnmarshal(val, &t)
	return &t, err
}
