package main

// fake_lms mimics the subset of the `lms` CLI used by CLITransport.
//
// FAKE_LMS_MODE: "" (normal), "fail" (exit 3 with stderr), "garbage"
// (non-JSON stdout), "sleep" (hang for 10s).
// FAKE_LMS_ARGV: when set, each invocation appends its argv as one line.
// FAKE_LMS_DELAY: a time.Duration slept before every normal response.

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	args := os.Args[1:]
	if p := os.Getenv("FAKE_LMS_ARGV"); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintln(f, strings.Join(args, " "))
			f.Close()
		}
	}
	if d, err := time.ParseDuration(os.Getenv("FAKE_LMS_DELAY")); err == nil {
		time.Sleep(d)
	}
	switch os.Getenv("FAKE_LMS_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "error: LM Studio is not running")
		os.Exit(3)
	case "garbage":
		fmt.Println("Models: a, b")
		return
	case "sleep":
		time.Sleep(10 * time.Second)
		return
	}
	// Skip leading default args such as --host X.
	for len(args) > 0 && strings.HasPrefix(args[0], "--") {
		args = args[2:]
	}
	cmd := strings.Join(args, " ")
	switch {
	case strings.HasPrefix(cmd, "ls"):
		fmt.Println(`[{"modelKey":"c","displayName":"Model C","type":"llm"},{"modelKey":"d","type":"llm"}]`)
	case strings.HasPrefix(cmd, "ps"):
		fmt.Println(`[{"identifier":"c","modelKey":"c"}]`)
	case strings.HasPrefix(cmd, "load"), strings.HasPrefix(cmd, "unload"):
		fmt.Println("ok")
	case strings.HasPrefix(cmd, "server config get"):
		fmt.Println(`{"eviction":{"ttlSeconds":60,"autoEvict":true,"maxLoadedModels":2}}`)
	case strings.HasPrefix(cmd, "server config set"):
		ttl := "60"
		for i, a := range args {
			if a == "--ttl" && i+1 < len(args) {
				ttl = args[i+1]
			}
		}
		fmt.Printf(`{"eviction":{"ttlSeconds":%s,"autoEvict":true,"maxLoadedModels":2}}`+"\n", ttl)
	case strings.HasPrefix(cmd, "status"):
		fmt.Println(`{"uptimeSeconds":42,"models":[{"modelKey":"c","state":"loaded","activeRequests":1}]}`)
	case strings.HasPrefix(cmd, "train ls"):
		fmt.Println(`{"jobs":[{"id":"j1","modelId":"c","status":"completed","progress":100}]}`)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		os.Exit(2)
	}
}
