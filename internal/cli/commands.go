package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lmsbridge/internal/lmclient"
	"lmsbridge/pkg/types"
)

func newModelsCmd(g *globals) *cobra.Command {
	modelsCmd := &cobra.Command{Use: "models", Aliases: []string{"model"}, Short: "List, inspect, load and unload models"}
	ls := &cobra.Command{Use: "ls", Aliases: []string{"list"}, Short: "List models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		models, err := g.services().Models.List(cmd.Context())
		if err != nil {
			return err
		}
		return printModels(g, models)
	}}
	get := &cobra.Command{Use: "get <id>", Short: "Show one model", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		m, err := g.services().Models.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printModels(g, []types.Model{m})
	}}
	load := &cobra.Command{Use: "load <id>", Short: "Load a model into memory", Example: "  lmsbridge models load qwen2.5-7b-instruct", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		if err := g.services().Models.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		return ack(g, args[0], "load")
	}}
	unload := &cobra.Command{Use: "unload <id>", Short: "Unload a model from memory", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		if err := g.services().Models.Unload(cmd.Context(), args[0]); err != nil {
			return err
		}
		return ack(g, args[0], "unload")
	}}
	modelsCmd.AddCommand(ls, get, load, unload)
	return modelsCmd
}

func ack(g *globals, id, action string) error {
	if g.asJSON() {
		return writeJSON(g.stdout, types.ActionResponse{ModelID: id, Action: action, OK: true})
	}
	_, err := fmt.Fprintf(g.stdout, "%s: %s ok\n", id, action)
	return err
}

func newConfigCmd(g *globals) *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Read or change the server eviction settings"}
	get := &cobra.Command{Use: "get", Short: "Show eviction settings", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := g.services().Config.Get(cmd.Context())
		if err != nil {
			return err
		}
		return printConfig(g, cfg)
	}}

	var (
		ttl       int
		autoEvict bool
		maxLoaded int
	)
	set := &cobra.Command{
		Use:     "set",
		Short:   "Change eviction settings; only the flags given are sent",
		Example: "  lmsbridge config set --ttl 300\n  lmsbridge config set --auto-evict=false --max-loaded 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := patchFromFlags(cmd, ttl, autoEvict, maxLoaded)
			cfg, err := g.services().Config.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return printConfig(g, cfg)
		},
	}
	set.Flags().IntVar(&ttl, "ttl", 0, "Idle seconds before a model is evicted")
	set.Flags().BoolVar(&autoEvict, "auto-evict", false, "Evict idle models automatically")
	set.Flags().IntVar(&maxLoaded, "max-loaded", 0, "Maximum number of models kept loaded")
	configCmd.AddCommand(get, set)
	return configCmd
}

// patchFromFlags includes a field only when its flag was given on the command line.
func patchFromFlags(cmd *cobra.Command, ttl int, autoEvict bool, maxLoaded int) types.ServerConfigPatch {
	var ev types.EvictionPatch
	changed := false
	if cmd.Flags().Changed("ttl") {
		ev.TTLSeconds = &ttl
		changed = true
	}
	if cmd.Flags().Changed("auto-evict") {
		ev.AutoEvict = &autoEvict
		changed = true
	}
	if cmd.Flags().Changed("max-loaded") {
		ev.MaxLoadedModels = &maxLoaded
		changed = true
	}
	if !changed {
		return types.ServerConfigPatch{}
	}
	return types.ServerConfigPatch{Eviction: &ev}
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{Use: "status", Short: "Show server runtime status", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		st, err := g.services().Status.Get(cmd.Context())
		if err != nil {
			return err
		}
		return printStatus(g, st)
	}}
}

func newTrainingCmd(g *globals) *cobra.Command {
	trainingCmd := &cobra.Command{Use: "training", Aliases: []string{"train"}, Short: "Fine-tuning jobs"}
	trainingCmd.AddCommand(&cobra.Command{Use: "ls", Aliases: []string{"list"}, Short: "List fine-tuning jobs", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := g.services().Training.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJobs(g, jobs)
	}})
	return trainingCmd
}

func newDoctorCmd(g *globals) *cobra.Command {
	return &cobra.Command{Use: "doctor", Short: "Check that the REST endpoint and the lms binary are usable", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		cc := g.cfg.ClientConfig(g.log, nil)
		r := lmclient.SanityCheck(cmd.Context(), lmclient.NewHTTPTransport(cc.HTTP), lmclient.NewCLITransport(cc.CLI))
		if g.asJSON() {
			if err := writeJSON(g.stdout, r); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(g.stdout, "http  %-5s %s %s\n", okWord(r.HTTPReachable), r.HTTPBaseURL, r.HTTPError)
			fmt.Fprintf(g.stdout, "cli   %-5s %s %s\n", okWord(r.CLIFound), r.CLIPath, r.CLIError)
		}
		if !r.HTTPReachable && !r.CLIFound {
			return fmt.Errorf("no usable transport")
		}
		return nil
	}}
}

func okWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}
