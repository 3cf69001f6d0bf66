package uid

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates sortable numeric identifiers.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a Snowflake generator. The node number is read from
// the SNOWFLAKE_NODE environment variable and defaults to 1.
func NewSnowflake() (*Snowflake, error) {
	nodeNum := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("uid: invalid SNOWFLAKE_NODE %q: %w", v, err)
		}
		nodeNum = n
	}

	node, err := snowflake.NewNode(nodeNum)
	if err != nil {
		return nil, fmt.Errorf("uid: new snowflake node: %w", err)
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
