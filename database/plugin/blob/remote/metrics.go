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

package remote

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type storeMetrics struct {
	gets         prometheus.Counter
	puts         prometheus.Counter
	deletes      prometheus.Counter
	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter
}

func newStoreMetrics(name string) *storeMetrics {
	prefix := "solcat_blob_" + name + "_"
	return &storeMetrics{
		gets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "gets_total",
			Help: "number of object reads",
		}),
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "puts_total",
			Help: "number of object writes",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "deletes_total",
			Help: "number of object deletes",
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "read_bytes_total",
			Help: "bytes read from the bucket",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "written_bytes_total",
			Help: "bytes written to the bucket",
		}),
	}
}

func (m *storeMetrics) register(registry prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.gets, m.puts, m.deletes, m.bytesRead, m.bytesWritten,
	} {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
