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

package executor

import (
	"time"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/processor"
	"github.com/blinklabs-io/solcat/records"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultOK = "ok"

type executorMetrics struct {
	instructions   *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	blacklisted    prometheus.Counter
	totalStaked    prometheus.Gauge
	rewardPerToken prometheus.Gauge
}

func newExecutorMetrics(promRegistry prometheus.Registerer) *executorMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &executorMetrics{
		instructions: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcat_instructions_total",
				Help: "instructions executed by opcode and result code",
			},
			[]string{"opcode", "result"},
		),
		duration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solcat_instruction_duration_seconds",
				Help:    "instruction execution time including commit",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"opcode"},
		),
		blacklisted: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "solcat_blacklisted_addresses_total",
			Help: "addresses blacklisted",
		}),
		totalStaked: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "solcat_stake_pool_total_staked",
			Help: "tokens staked in the pool",
		}),
		rewardPerToken: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "solcat_stake_pool_reward_per_token",
			Help: "accumulated reward per staked token, scaled by 1e9",
		}),
	}
}

func (m *executorMetrics) observe(opcode string, result string, d time.Duration) {
	m.instructions.WithLabelValues(opcode, result).Inc()
	m.duration.WithLabelValues(opcode).Observe(d.Seconds())
}

func (m *executorMetrics) update(result *processor.Result) {
	if result.Opcode == instruction.OpBlacklistAddress {
		m.blacklisted.Inc()
	}
	for _, rec := range result.Records {
		if pool, ok := rec.(*records.StakePool); ok {
			m.totalStaked.Set(float64(pool.TotalStaked))
			m.rewardPerToken.Set(float64(pool.RewardPerToken))
		}
	}
}
