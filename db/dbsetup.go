package db

import (
	"hyperv-facade/config"
	"hyperv-facade/db/badgerdb"
)

func Setup() {
	if config.G.Server.Db.Badger != nil {
		badgerdb.Setup()
	}
}

func Close() {
	badgerdb.Close()
}
