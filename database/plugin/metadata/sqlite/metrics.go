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
	"github.com/blinklabs-io/solcat/database/models"
	"github.com/prometheus/client_golang/prometheus"
)

const metadataMetricsPrefix = "solcat_metadata_sqlite_"

// registerMetrics exposes row counts of the index tables
func (d *MetadataStoreSqlite) registerMetrics() {
	tables := map[string]any{
		"report":          &models.Report{},
		"blacklist_entry": &models.BlacklistEntry{},
		"batch":           &models.Batch{},
		"history_entry":   &models.HistoryEntry{},
	}
	for name, model := range tables {
		d.promRegistry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: metadataMetricsPrefix + name + "_rows",
					Help: "number of rows in the " + name + " table",
				},
				func() float64 {
					var count int64
					if err := d.DB().Model(model).Count(&count).Error; err != nil {
						return 0
					}
					return float64(count)
				},
			),
		)
	}
}
