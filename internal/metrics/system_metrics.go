package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SystemMetrics интерфейс для системных метрик
type SystemMetrics interface {
	Record()
	StartRecording(interval time.Duration)
	Stop()
}

type systemMetrics struct {
	log          *logger.Logger
	goroutines   prometheus.Gauge
	memoryAlloc  prometheus.Gauge
	memorySystem prometheus.Gauge
	gcCycles     prometheus.Counter

	mu        sync.Mutex
	lastNumGC uint32
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// NewSystemMetrics создает новые системные метрики
func NewSystemMetrics(registry *prometheus.Registry, log *logger.Logger) SystemMetrics {
	factory := promauto.With(registry)

	return &systemMetrics{
		log: log,
		goroutines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "system_goroutines",
			Help:      "Current number of goroutines",
		}),
		memoryAlloc: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "system_memory_alloc_bytes",
			Help:      "Currently allocated memory in bytes",
		}),
		memorySystem: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "system_memory_system_bytes",
			Help:      "Total memory obtained from system in bytes",
		}),
		gcCycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "system_gc_cycles_total",
			Help:      "Total number of completed garbage collections",
		}),
		stopCh: make(chan struct{}),
	}
}

// Record записывает количество горутин и метрики памяти
func (m *systemMetrics) Record() {
	m.goroutines.Set(float64(runtime.NumGoroutine()))

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.memoryAlloc.Set(float64(memStats.Alloc))
	m.memorySystem.Set(float64(memStats.Sys))

	// NumGC is cumulative; add only the cycles since the last sample
	m.mu.Lock()
	if memStats.NumGC > m.lastNumGC {
		m.gcCycles.Add(float64(memStats.NumGC - m.lastNumGC))
		m.lastNumGC = memStats.NumGC
	}
	m.mu.Unlock()
}

// StartRecording начинает запись метрик с заданным интервалом
func (m *systemMetrics) StartRecording(interval time.Duration) {
	m.Record()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Record()
			case <-m.stopCh:
				return
			}
		}
	}()
	m.log.Info("System metrics recording started with interval %s", interval)
}

// Stop останавливает запись метрик
func (m *systemMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.log.Info("System metrics recording stopped")
	})
}
