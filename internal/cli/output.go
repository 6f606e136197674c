package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"lmsbridge/pkg/types"
)

func (g *globals) asJSON() bool { return g.output == "json" }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer, header string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		for i, c := range r {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func printModels(g *globals, models []types.Model) error {
	if g.asJSON() {
		return writeJSON(g.stdout, types.ModelsResponse{Models: models})
	}
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{m.ID, m.Name, string(m.Status)})
	}
	return table(g.stdout, "ID\tNAME\tSTATUS", rows)
}

func printConfig(g *globals, cfg types.ServerConfig) error {
	if g.asJSON() {
		return writeJSON(g.stdout, cfg)
	}
	ev := cfg.Eviction
	return table(g.stdout, "TTL_SECONDS\tAUTO_EVICT\tMAX_LOADED", [][]string{
		{strconv.Itoa(ev.TTLSeconds), strconv.FormatBool(ev.AutoEvict), optInt(ev.MaxLoadedModels)},
	})
}

func printStatus(g *globals, st types.ServerStatus) error {
	if g.asJSON() {
		return writeJSON(g.stdout, st)
	}
	mem := "-"
	if st.MemoryUsageBytes != nil {
		mem = strconv.FormatInt(*st.MemoryUsageBytes, 10)
	}
	fmt.Fprintf(g.stdout, "uptime: %ds  loaded: %d  memory: %s\n", st.UptimeSeconds, st.LoadedCount, mem)
	rows := make([][]string, 0, len(st.Models))
	for _, m := range st.Models {
		rows = append(rows, []string{m.ModelID, string(m.State), strconv.Itoa(m.ActiveRequests)})
	}
	return table(g.stdout, "MODEL\tSTATE\tACTIVE", rows)
}

func printJobs(g *globals, jobs []types.TrainingJob) error {
	if g.asJSON() {
		return writeJSON(g.stdout, types.TrainingJobsResponse{Jobs: jobs})
	}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{j.ID, j.ModelID, string(j.Status), optInt(j.ProgressPercent)})
	}
	return table(g.stdout, "ID\tMODEL\tSTATUS\tPROGRESS", rows)
}
