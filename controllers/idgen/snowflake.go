package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// Init configures the generator node. It only has an effect on the first call;
// GenerateID falls back to node 1 when Init was never called.
func Init(nodeID int64) error {
	nodeOnce.Do(func() {
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return nodeErr
}

func GenerateID() int64 {
	if err := Init(1); err != nil {
		panic(err)
	}
	return node.Generate().Int64()
}
