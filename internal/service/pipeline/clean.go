package pipeline

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Clean removes every pipeline artifact and the sort temp directory. The
// block store and the height index live outside the data directory's
// artifact set and are never touched.
func (p *Pipeline) Clean() error {
	names := []string{
		InputsUnsortedFile,
		InputsSortedFile,
		OutputsUnsortedFile,
		OutputsSortedFile,
		JoinedUnsortedFile,
		JoinedSortedFile,
		FailureLogFile,
	}
	for _, name := range names {
		err := os.Remove(p.path(name))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
		if err == nil {
			p.logger.Info("artifact removed", zap.String("artifact", name))
		}
	}
	if err := os.RemoveAll(p.path(SortTempDir)); err != nil {
		return fmt.Errorf("remove %s: %w", SortTempDir, err)
	}
	return nil
}
