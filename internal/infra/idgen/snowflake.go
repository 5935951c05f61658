// File: internal/infra/idgen/snowflake.go
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeGenerator issues time-ordered, collision-free bill ids. Uniqueness
// comes from the node id + per-millisecond sequence, not from wall-clock
// resolution, so two bills created in the same millisecond still differ.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

func (g *SnowflakeGenerator) NextBillID() int64 {
	return g.node.Generate().Int64()
}
