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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
)

const blobMetricsPrefix = "solcat_blob_badger_"

type blobMetrics struct {
	gets     prometheus.Counter
	sets     prometheus.Counter
	deletes  prometheus.Counter
	lsmSize  prometheus.GaugeFunc
	vlogSize prometheus.GaugeFunc
}

func newBlobMetrics(d *BlobStoreBadger) *blobMetrics {
	return &blobMetrics{
		gets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: blobMetricsPrefix + "gets_total",
			Help: "number of blob reads",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: blobMetricsPrefix + "sets_total",
			Help: "number of blob writes",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: blobMetricsPrefix + "deletes_total",
			Help: "number of blob deletes",
		}),
		lsmSize: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: blobMetricsPrefix + "lsm_size_bytes",
				Help: "size of the LSM tree",
			},
			func() float64 {
				lsm, _ := d.db.Size()
				return float64(lsm)
			},
		),
		vlogSize: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: blobMetricsPrefix + "vlog_size_bytes",
				Help: "size of the value log",
			},
			func() float64 {
				_, vlog := d.db.Size()
				return float64(vlog)
			},
		),
	}
}

func (m *blobMetrics) register(registry prometheus.Registerer) {
	registry.MustRegister(m.gets, m.sets, m.deletes, m.lsmSize, m.vlogSize)
}
