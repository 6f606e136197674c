package lmclient

import (
	"strings"

	"github.com/tidwall/gjson"
)

// The `lms` JSON output is not versioned and key spelling differs between
// releases (camelCase vs snake_case, modelKey vs identifier), so parsing goes
// through gjson with a list of accepted paths per field.

var (
	modelKeyPaths   = []string{"modelKey", "identifier", "id", "path"}
	modelNamePaths  = []string{"displayName", "display_name", "name"}
	ttlPaths        = []string{"eviction.ttlSeconds", "eviction.ttl_seconds", "ttlSeconds", "ttl_seconds", "ttl"}
	autoEvictPaths  = []string{"eviction.autoEvict", "eviction.auto_evict", "autoEvict", "auto_evict"}
	maxLoadedPaths  = []string{"eviction.maxLoadedModels", "eviction.max_loaded_models", "maxLoadedModels", "max_loaded_models"}
	uptimePaths     = []string{"uptimeSeconds", "uptime_seconds", "uptime"}
	memoryPaths     = []string{"memoryUsageBytes", "memory_usage_bytes", "memoryBytes"}
	activePaths     = []string{"activeRequests", "active_requests"}
	jobModelPaths   = []string{"modelId", "model_id", "modelKey", "model"}
	jobProgressPath = []string{"progress", "progressPercent", "progress_percent"}
	jobListPaths    = []string{"jobs", "data"}
)

func cliUnparseable(format string, a ...any) error {
	return newError(KindCLIUnavailable, nil, format, a...).withDetail("unparseable", true)
}

// first returns the first existing value among paths.
func first(r gjson.Result, paths []string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// parseJSON validates raw stdout and returns the root value.
func parseJSON(b []byte, what string) (gjson.Result, error) {
	if !gjson.ValidBytes(b) || len(strings.TrimSpace(string(b))) == 0 {
		return gjson.Result{}, cliUnparseable("%s: stdout is not valid JSON", what)
	}
	return gjson.ParseBytes(b), nil
}

// parseArray accepts either a bare array or an object wrapping one under listPaths.
func parseArray(b []byte, what string, listPaths []string) ([]gjson.Result, error) {
	root, err := parseJSON(b, what)
	if err != nil {
		return nil, err
	}
	if root.IsArray() {
		return root.Array(), nil
	}
	if root.IsObject() {
		if v := first(root, listPaths); v.IsArray() {
			return v.Array(), nil
		}
	}
	return nil, cliUnparseable("%s: expected a JSON array", what)
}

// parseModelList joins `ls` (all models) with `ps` (loaded models).
func parseModelList(ls, ps []byte) ([]ModelDTO, error) {
	all, err := parseArray(ls, "ls", []string{"models", "data"})
	if err != nil {
		return nil, err
	}
	loadedItems, err := parseArray(ps, "ps", []string{"models", "data"})
	if err != nil {
		return nil, err
	}
	loaded := make(map[string]bool, len(loadedItems))
	for _, it := range loadedItems {
		for _, p := range modelKeyPaths {
			if v := it.Get(p); v.Type == gjson.String && v.String() != "" {
				loaded[v.String()] = true
			}
		}
	}
	out := make([]ModelDTO, 0, len(all))
	for _, it := range all {
		id := first(it, modelKeyPaths).String()
		if id == "" {
			return nil, cliUnparseable("ls: model entry without key")
		}
		m := ModelDTO{ID: id, Name: first(it, modelNamePaths).String(), Loaded: loaded[id]}
		if v := it.Get("loaded"); v.IsBool() {
			m.Loaded = m.Loaded || v.Bool()
		}
		out = append(out, m)
	}
	return out, nil
}

func parseServerConfig(b []byte) (ServerConfigDTO, error) {
	root, err := parseJSON(b, "server config")
	if err != nil {
		return ServerConfigDTO{}, err
	}
	ttl := first(root, ttlPaths)
	auto := first(root, autoEvictPaths)
	if ttl.Type != gjson.Number || !auto.IsBool() {
		return ServerConfigDTO{}, cliUnparseable("server config: missing ttl or auto-evict")
	}
	cfg := ServerConfigDTO{Eviction: EvictionDTO{TTLSeconds: int(ttl.Int()), AutoEvict: auto.Bool()}}
	if m := first(root, maxLoadedPaths); m.Type == gjson.Number {
		n := int(m.Int())
		cfg.Eviction.MaxLoadedModels = &n
	}
	return cfg, nil
}

func parseStatus(b []byte) (StatusDTO, error) {
	root, err := parseJSON(b, "status")
	if err != nil {
		return StatusDTO{}, err
	}
	up := first(root, uptimePaths)
	if up.Type != gjson.Number {
		return StatusDTO{}, cliUnparseable("status: missing uptime")
	}
	st := StatusDTO{UptimeSeconds: up.Int()}
	if mem := first(root, memoryPaths); mem.Type == gjson.Number {
		n := mem.Int()
		st.MemoryUsageBytes = &n
	}
	models := root.Get("models").Array()
	st.Models = make([]ModelRuntimeDTO, 0, len(models))
	for _, it := range models {
		id := first(it, modelKeyPaths).String()
		if id == "" {
			return StatusDTO{}, cliUnparseable("status: model entry without key")
		}
		rt := ModelRuntimeDTO{ModelID: id, ActiveRequests: int(first(it, activePaths).Int())}
		if v := it.Get("loaded"); v.IsBool() {
			rt.Loaded = v.Bool()
		} else {
			rt.Loaded = isLoadedState(it.Get("state").String())
		}
		st.Models = append(st.Models, rt)
	}
	return st, nil
}

func parseTrainingJobs(b []byte) ([]TrainingJobDTO, error) {
	items, err := parseArray(b, "train ls", jobListPaths)
	if err != nil {
		return nil, err
	}
	out := make([]TrainingJobDTO, 0, len(items))
	for _, it := range items {
		j := TrainingJobDTO{
			ID:      it.Get("id").String(),
			ModelID: first(it, jobModelPaths).String(),
		}
		if j.ID == "" {
			return nil, cliUnparseable("train ls: job entry without id")
		}
		st, ok := normalizeTrainingStatus(it.Get("status").String())
		if !ok {
			return nil, cliUnparseable("train ls: job %s has unknown status %q", j.ID, it.Get("status").String())
		}
		j.Status = st
		if p := first(it, jobProgressPath); p.Type == gjson.Number {
			n := int(p.Int())
			j.Progress = &n
		}
		out = append(out, j)
	}
	return out, nil
}
