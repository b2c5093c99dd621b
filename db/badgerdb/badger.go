package badgerdb

import (
	"errors"
	"fmt"
	"github.com/dgraph-io/badger/v3"
	"github.com/gofrs/flock"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/config"
	"os"
	"path/filepath"
)

const lockFile = "hyperv-facade.lock"

var (
	db     *badger.DB
	locker *flock.Flock
)

func Setup() {
	dataPath := config.G.Server.Db.Badger.Path
	if dataPath != "" {
		if err := Open(dataPath); err != nil {
			logging.L().Panic("badger DB初始化失败", err)
		}
	}
}

// Open 同一数据目录只允许一个进程打开，未完成请求的记录不能被两个实例同时回调
func Open(dataPath string) error {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return err
	}
	fl := flock.New(filepath.Join(dataPath, lockFile))
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("锁定数据目录[%s]失败: %w", dataPath, err)
	}
	if !locked {
		return fmt.Errorf("数据目录[%s]已被其他进程使用", dataPath)
	}
	opts := badger.DefaultOptions(dataPath).WithLogger(nil)
	d, err := badger.Open(opts)
	if err != nil {
		_ = fl.Unlock()
		return err
	}
	db, locker = d, fl
	return nil
}

func Close() {
	if db != nil {
		if err := db.Close(); err != nil {
			logging.L().Errorf("关闭badger DB出错: %v", err)
		}
		db = nil
	}
	if locker != nil {
		_ = locker.Unlock()
		locker = nil
	}
}

func Set(k, v string) {
	if !isAvailable() {
		return
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()
	err := wb.SetEntry(badger.NewEntry([]byte(k), []byte(v)).WithMeta(0))
	if err != nil {
		logging.L().Errorf("写入键[%s]出错: %v", k, err)
		return
	}

	err = wb.Flush()
	if err != nil {
		logging.L().Errorf("写入键[%s]Flush出错: %v", k, err)
	}
}

func Get(k string) string {
	if !isAvailable() {
		return ""
	}

	var val []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(k))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		logging.L().Errorf("读取键[%s]的值错误：%v", k, err)
	}
	return string(val)
}

func Has(k string) bool {
	if !isAvailable() {
		return false
	}
	err := db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(k))
		return err
	})
	return err == nil
}

func Del(k string) error {
	if !isAvailable() {
		return nil
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()
	err := wb.Delete([]byte(k))
	if err != nil {
		logging.L().Errorf("删除键[%s]出错: %v", k, err)
		return err
	}
	err = wb.Flush()
	if err != nil {
		logging.L().Errorf("删除键[%s]Flush出错: %v", k, err)
		return err
	}
	return err
}

func GetAll() map[string]string {
	var all = make(map[string]string)
	if !isAvailable() {
		return all
	}

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			v, err := item.ValueCopy(nil)
			if err != nil {
				logging.L().Errorf("提取键[%s]值出错: %v", k, err)
				continue
			}
			all[string(k)] = string(v)
		}
		return nil
	})

	if err != nil {
		logging.L().Error(err)
	}
	return all
}

func TableInfo() {
	if !isAvailable() {
		return
	}
	for _, info := range db.Tables() {
		logging.L().Debug(utils.ToJson(info))
	}
}

func isAvailable() bool {
	if db == nil {
		logging.L().Debug("badger DB未启用")
		return false
	}
	return true
}
