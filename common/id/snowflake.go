// Package id hands out snowflake identifiers for database rows. Call Init
// once at startup before any store writes.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init configures the generator node. Repeated calls keep the first node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns the next identifier. IDs sort by creation time.
func New() int64 {
	return node.Generate().Int64()
}
