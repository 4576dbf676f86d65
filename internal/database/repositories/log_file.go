// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package repositories

import (
	"time"

	"logsight/internal/database/models"

	"gorm.io/gorm"
)

type LogFileRepository interface {
	Create(file *models.LogFile) error
	FindByName(name string) (*models.LogFile, error)
	FindAll() ([]*models.LogFile, error)
	Update(file *models.LogFile) error
	UpdateParseStats(name string, valid bool, records int, parseMs int64) error
	Delete(name string) error
}

type logFileRepo struct {
	db *gorm.DB
}

func NewLogFileRepository(db *gorm.DB) LogFileRepository {
	return &logFileRepo{db: db}
}

func (r *logFileRepo) Create(file *models.LogFile) error {
	return r.db.Create(file).Error
}

func (r *logFileRepo) FindByName(name string) (*models.LogFile, error) {
	var file models.LogFile
	err := r.db.Where("name = ?", name).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// FindAll returns the catalog oldest month first.
func (r *logFileRepo) FindAll() ([]*models.LogFile, error) {
	var files []*models.LogFile
	err := r.db.Order("period ASC").Order("name ASC").Find(&files).Error
	return files, err
}

func (r *logFileRepo) Update(file *models.LogFile) error {
	return r.db.Save(file).Error
}

func (r *logFileRepo) UpdateParseStats(name string, valid bool, records int, parseMs int64) error {
	now := time.Now()
	result := r.db.Model(&models.LogFile{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"valid":          valid,
			"records":        records,
			"parse_ms":       parseMs,
			"last_parsed_at": now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *logFileRepo) Delete(name string) error {
	return r.db.Where("name = ?", name).Delete(&models.LogFile{}).Error
}
