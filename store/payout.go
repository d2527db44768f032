package store

import (
	"github.com/dgraph-io/badger/v3"

	"github.com/duskdawn/mintd/mint"
)

const prefixPayoutPayload = "PAYOUT:PAYLOAD:"

func (bs *BadgerStore) ListPayouts(limit int) ([]*mint.Payout, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixPayoutPayload)
	it := txn.NewIterator(opts)
	defer it.Close()

	var ps []*mint.Payout
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var p mint.Payout
		err = msgpackUnmarshal(val, &p)
		if err != nil {
			return nil, err
		}
		ps = append(ps, &p)
		if len(ps) == limit {
			break
		}
	}
	return ps, nil
}

func (bs *BadgerStore) writePayout(txn *badger.Txn, p *mint.Payout) error {
	key := append([]byte(prefixPayoutPayload), tsToBytes(p.CreatedAt)...)
	key = append(key, []byte(p.TraceId)...)
	return txn.Set(key, msgpackMarshalPanic(p))
}
