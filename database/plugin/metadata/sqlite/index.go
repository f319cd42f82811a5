// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/solcat/database/models"
	"github.com/blinklabs-io/solcat/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetReport creates or replaces the index row for a report record
func (d *MetadataStoreSqlite) SetReport(
	report *models.Report,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "report_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reporter",
			"reported_address",
			"stake_amount",
			"timestamp",
			"last_update_time",
			"vote_weight",
			"risk_score",
		}),
	}).Create(report)
	return result.Error
}

// GetReportsByAddress returns the reports filed against an address, oldest first
func (d *MetadataStoreSqlite) GetReportsByAddress(
	address []byte,
	txn types.Txn,
) ([]models.Report, error) {
	return d.findReports("reported_address = ?", address, txn)
}

// GetReportsByReporter returns the reports filed by a reporter, oldest first
func (d *MetadataStoreSqlite) GetReportsByReporter(
	reporter []byte,
	txn types.Txn,
) ([]models.Report, error) {
	return d.findReports("reporter = ?", reporter, txn)
}

func (d *MetadataStoreSqlite) findReports(
	query string,
	arg []byte,
	txn types.Txn,
) ([]models.Report, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Report
	result := db.Where(query, arg).Order("timestamp, id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) SetBlacklistEntry(
	entry *models.BlacklistEntry,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "history_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "reason", "timestamp"}),
	}).Create(entry)
	return result.Error
}

// GetBlacklist returns all blacklist entries in the order they were added
func (d *MetadataStoreSqlite) GetBlacklist(
	txn types.Txn,
) ([]models.BlacklistEntry, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.BlacklistEntry
	if result := db.Order("timestamp, id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// IsBlacklisted reports whether the address, or a history record keyed by
// it, carries the blacklist flag
func (d *MetadataStoreSqlite) IsBlacklisted(
	address []byte,
	txn types.Txn,
) (bool, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var tmpEntry models.BlacklistEntry
	result := db.Where("address = ? OR history_key = ?", address, address).
		First(&tmpEntry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, result.Error
	}
	return true, nil
}

func (d *MetadataStoreSqlite) SetBatch(
	batch *models.Batch,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "batch_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"reporter", "timestamp", "size", "status"}),
	}).Create(batch)
	return result.Error
}

func (d *MetadataStoreSqlite) GetBatchesByStatus(
	status uint8,
	txn types.Txn,
) ([]models.Batch, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Batch
	result := db.Where("status = ?", status).Order("timestamp, id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (d *MetadataStoreSqlite) AddHistoryEntry(
	entry *models.HistoryEntry,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(entry).Error
}

// GetHistory returns the snapshots recorded for an address, oldest first
func (d *MetadataStoreSqlite) GetHistory(
	address []byte,
	txn types.Txn,
) ([]models.HistoryEntry, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.HistoryEntry
	result := db.Where("address = ? OR history_key = ?", address, address).
		Order("timestamp, id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
