package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"time"
)

type StatsProvider interface {
	Incr(name string)
	Decr(name string)
	RegisterMetric(name string)
	Run()
}

// StatsUpdater maintains runtime counters in an expvar map. Counter updates
// are funneled through a channel so they never contend with the hub loop.
type StatsUpdater struct {
	vars       *expvar.Map
	updateChan chan metricUpdate
}

type metricUpdate struct {
	name  string
	delta int64
}

// NewStatsUpdater creates the updater and mounts its JSON dump on
// GET /debug/vars.
func NewStatsUpdater(mux *http.ServeMux) *StatsUpdater {
	su := &StatsUpdater{
		vars:       expvar.NewMap("chatterbox-stats"),
		updateChan: make(chan metricUpdate, 512),
	}
	mux.Handle("GET /debug/vars", http.HandlerFunc(su.serveVars))

	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))

	return su
}

func (su *StatsUpdater) serveVars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	data := make(map[string]any)
	su.vars.Do(func(kv expvar.KeyValue) {
		var value any
		json.Unmarshal([]byte(kv.Value.String()), &value)
		data[kv.Key] = value
	})

	json.NewEncoder(w).Encode(data)
}

func (su *StatsUpdater) RegisterMetric(name string) {
	su.vars.Set(name, expvar.NewInt(name))
}

func (su *StatsUpdater) Incr(name string) {
	su.updateChan <- metricUpdate{name: name, delta: 1}
}

func (su *StatsUpdater) Decr(name string) {
	su.updateChan <- metricUpdate{name: name, delta: -1}
}

func (su *StatsUpdater) Run() {
	go func() {
		for req := range su.updateChan {
			metric, ok := su.vars.Get(req.name).(*expvar.Int)
			if !ok {
				panic("metric not registered: " + req.name)
			}

			metric.Add(req.delta)
		}
	}()
}

func (su *StatsUpdater) Stop() {
	close(su.updateChan)
}
