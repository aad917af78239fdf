package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/errors"
)

// LevelDBBackend keeps the records of one node. Values are stored as json
// unless they are `common.Serializable`.
type LevelDBBackend struct {
	DB *leveldb.DB

	config *Config
}

func NewStorage(config *Config) (st *LevelDBBackend, err error) {
	st = &LevelDBBackend{}
	if err = st.Init(config); err != nil {
		st = nil
	}

	return
}

func coreError(err error) error {
	if err == nil {
		return nil
	}

	return errors.NewError(
		errors.StorageCoreError.Code,
		fmt.Sprintf("%s: %s", errors.StorageCoreError.Message, err.Error()),
	)
}

func (st *LevelDBBackend) Init(config *Config) (err error) {
	var db *leveldb.DB

	switch config.Scheme {
	case "file":
		db, err = leveldb.OpenFile(config.Path, nil)
	case "memory":
		db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	default:
		return errors.StorageInvalidConfig.Clone().SetData("scheme", config.Scheme)
	}
	if err != nil {
		return coreError(err)
	}

	st.DB = db
	st.config = config

	return nil
}

func (st *LevelDBBackend) Config() *Config {
	return st.config
}

func (st *LevelDBBackend) Close() error {
	if st.DB == nil {
		return nil
	}

	return st.DB.Close()
}

func encodeValue(v interface{}) (b []byte, err error) {
	if s, ok := v.(common.Serializable); ok {
		b, err = s.Serialize()
	} else {
		b, err = json.Marshal(v)
	}

	return b, coreError(err)
}

func (st *LevelDBBackend) Has(k string) (bool, error) {
	found, err := st.DB.Has([]byte(k), nil)
	switch {
	case err == leveldb.ErrNotFound:
		return false, nil
	case err != nil:
		return false, coreError(err)
	}

	return found, nil
}

func (st *LevelDBBackend) GetRaw(k string) ([]byte, error) {
	b, err := st.DB.Get([]byte(k), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.StorageRecordNotFound
	}

	return b, coreError(err)
}

func (st *LevelDBBackend) Get(k string, i interface{}) error {
	b, err := st.GetRaw(k)
	if err != nil {
		return err
	}

	return coreError(json.Unmarshal(b, i))
}

// expect fails unless the existence of the key is `exists`.
func (st *LevelDBBackend) expect(k string, exists bool) error {
	found, err := st.Has(k)
	switch {
	case err != nil:
		return err
	case found && !exists:
		return errors.StorageRecordExists
	case !found && exists:
		return errors.StorageRecordNotFound
	}

	return nil
}

func (st *LevelDBBackend) put(k string, v interface{}, exists bool) error {
	b, err := encodeValue(v)
	if err != nil {
		return err
	}
	if err = st.expect(k, exists); err != nil {
		return err
	}

	return coreError(st.DB.Put([]byte(k), b, nil))
}

// New stores a new record; the key must not exist.
func (st *LevelDBBackend) New(k string, v interface{}) error {
	return st.put(k, v, false)
}

// Set overwrites an existing record.
func (st *LevelDBBackend) Set(k string, v interface{}) error {
	return st.put(k, v, true)
}

// News stores every item in one batch; no item may already exist.
func (st *LevelDBBackend) News(items ...Item) error {
	if len(items) < 1 {
		return nil
	}

	batch := new(leveldb.Batch)
	for _, item := range items {
		if err := st.expect(item.Key, false); err != nil {
			return err
		}

		b, err := encodeValue(item.Value)
		if err != nil {
			return err
		}
		batch.Put([]byte(item.Key), b)
	}

	return coreError(st.DB.Write(batch, nil))
}

func (st *LevelDBBackend) Remove(k string) error {
	if err := st.expect(k, true); err != nil {
		return err
	}

	return coreError(st.DB.Delete([]byte(k), nil))
}

// Walk calls walkFunc for the records under prefix in key order, or in
// reverse order.
func (st *LevelDBBackend) Walk(prefix string, option *WalkOption, walkFunc WalkFunc) error {
	if option == nil {
		option = NewWalkOption(0, false)
	}

	var r *leveldbUtil.Range
	if len(prefix) > 0 {
		r = leveldbUtil.BytesPrefix([]byte(prefix))
	}

	iter := st.DB.NewIterator(r, nil)
	defer iter.Release()

	first, next := iter.First, iter.Next
	if option.Reverse {
		first, next = iter.Last, iter.Prev
	}

	if len(option.Cursor) > 0 {
		cursor := []byte(option.Cursor)
		if option.Reverse {
			first = func() bool {
				if iter.Seek(cursor) {
					return iter.Prev()
				}
				return iter.Last()
			}
		} else {
			first = func() bool {
				if !iter.Seek(cursor) {
					return false
				}
				if bytes.Equal(iter.Key(), cursor) {
					return iter.Next()
				}
				return true
			}
		}
	}

	var walked uint64
	for ok := first(); ok; ok = next() {
		if option.Limit > 0 && walked >= option.Limit {
			break
		}

		goOn, err := walkFunc(iter.Key(), iter.Value())
		if err != nil {
			return err
		}
		if !goOn {
			break
		}
		walked++
	}

	return coreError(iter.Error())
}
