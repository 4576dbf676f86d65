package database

import (
	"errors"
	"fmt"
	"os"

	"logsight/internal/database/repositories"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// PruneMissing removes catalog entries whose file no longer exists on disk
// and returns their names.
func PruneMissing(db *gorm.DB, logger *pterm.Logger) ([]string, error) {
	repo := repositories.NewLogFileRepository(db)

	files, err := repo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	var removed []string
	for _, file := range files {
		_, err := os.Stat(file.Path)
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Cannot stat catalogued log", logger.Args("name", file.Name, "path", file.Path, "error", err))
			continue
		}

		if err := repo.Delete(file.Name); err != nil {
			return removed, fmt.Errorf("failed to remove %s from catalog: %w", file.Name, err)
		}
		removed = append(removed, file.Name)
		logger.Info("Removed vanished log from catalog", logger.Args("name", file.Name, "path", file.Path))
	}

	return removed, nil
}
