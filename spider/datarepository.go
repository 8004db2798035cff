package spider

import (
	"go.uber.org/zap"
)

type DataRepository interface {
	Save(cell *DataCell) error
}

// DataCell is the final record set of one task run.
type DataCell struct {
	Task       string
	Collection string
	Output     string
	URL        string
	Fields     []string
	Items      []interface{}
}

func (d *DataCell) GetTableName() string {
	return d.Task
}

// MirroredRepository saves a cell to Primary and, only when that worked, to
// every mirror. A mirror failure is logged and does not fail the save, so
// the primary output and the reported task status always agree.
type MirroredRepository struct {
	Primary DataRepository
	Mirrors []DataRepository
	Logger  *zap.Logger
}

func (m *MirroredRepository) Save(cell *DataCell) error {
	if err := m.Primary.Save(cell); err != nil {
		return err
	}

	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, r := range m.Mirrors {
		if err := r.Save(cell); err != nil {
			logger.Warn("mirror save failed", zap.String("task", cell.Task), zap.Error(err))
		}
	}

	return nil
}
