package shell

import (
	"github.com/hashicorp/go-memdb"

	"github.com/wetware/greet/pkg/app"
)

const table = "instances"

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		table: {
			Name: table,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Locator"},
				},
			},
		},
	},
}

// Instance is a running application.  Instances MUST NOT be modified
// after they have been inserted into the table.
type Instance struct {
	Locator   string // resolved
	Requested string // as first requested
	App       app.Application
}

func (inst *Instance) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"app":       inst.Locator,
		"requested": inst.Requested,
	}
}

type instances struct{ db *memdb.MemDB }

func newInstances() (instances, error) {
	db, err := memdb.NewMemDB(schema)
	return instances{db: db}, err
}

func (is instances) Get(locator string) (*Instance, bool) {
	tx := is.db.Txn(false)
	defer tx.Abort()

	v, err := tx.First(table, "id", locator)
	if err != nil || v == nil {
		return nil, false
	}

	return v.(*Instance), true
}

func (is instances) Insert(inst *Instance) error {
	tx := is.db.Txn(true)
	defer tx.Abort()

	if err := tx.Insert(table, inst); err != nil {
		return err
	}

	tx.Commit()
	return nil
}

// List locators in lexicographical order.
func (is instances) List() []string {
	tx := is.db.Txn(false)
	defer tx.Abort()

	it, err := tx.Get(table, "id")
	if err != nil {
		return nil
	}

	var ls []string
	for v := it.Next(); v != nil; v = it.Next() {
		ls = append(ls, v.(*Instance).Locator)
	}

	return ls
}

func (is instances) Len() int {
	return len(is.List())
}
