package ports

import (
	"context"

	"gospc/domain/dataset"
)

// TableReader loads the analysed dataset from its source
type TableReader interface {
	ReadTable(ctx context.Context) (*dataset.Table, error)
}
