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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/solcat/database/models"
	"github.com/blinklabs-io/solcat/database/plugin"
	"github.com/blinklabs-io/solcat/database/types"
	"gorm.io/gorm"
)

// MetadataStore is the queryable index kept alongside the record store. A nil
// txn runs the operation outside of any transaction.
type MetadataStore interface {
	// Database
	plugin.Plugin
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Reports
	SetReport(*models.Report, types.Txn) error
	GetReportsByAddress([]byte, types.Txn) ([]models.Report, error)
	GetReportsByReporter([]byte, types.Txn) ([]models.Report, error)

	// Blacklist
	SetBlacklistEntry(*models.BlacklistEntry, types.Txn) error
	GetBlacklist(types.Txn) ([]models.BlacklistEntry, error)
	IsBlacklisted([]byte, types.Txn) (bool, error)

	// Batches
	SetBatch(*models.Batch, types.Txn) error
	GetBatchesByStatus(uint8, types.Txn) ([]models.Batch, error)

	// History
	AddHistoryEntry(*models.HistoryEntry, types.Txn) error
	GetHistory([]byte, types.Txn) ([]models.HistoryEntry, error)
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
