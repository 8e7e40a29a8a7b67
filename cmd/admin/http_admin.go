package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"voxelsandbox.dev/internal/sim/world"
)

// sandboxState mirrors the server's /admin/v1/state payload.
type sandboxState struct {
	Seed     int64        `json:"seed"`
	Palette  string       `json:"palette_digest"`
	Status   world.Status `json:"status"`
	GenTrees int          `json:"gen_trees"`
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	raw := fs.Bool("raw", false, "print the JSON body unchanged")
	_ = fs.Parse(args)

	cl := &http.Client{Timeout: 5 * time.Second}
	if err := fetchState(os.Stdout, cl, *baseURL, *raw); err != nil {
		fmt.Fprintln(os.Stderr, "state:", err)
		os.Exit(1)
	}
}

func fetchState(out io.Writer, cl *http.Client, baseURL string, raw bool) error {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/admin/v1/state"
	resp, err := cl.Get(u)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if raw {
		_, err := io.Copy(out, resp.Body)
		return err
	}
	return printState(out, resp.Body)
}

func printState(out io.Writer, body io.Reader) error {
	var st sandboxState
	if err := json.NewDecoder(body).Decode(&st); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	s := st.Status
	fmt.Fprintf(out, "seed=%d palette=%s trees=%d\n", st.Seed, shortDigest(st.Palette), st.GenTrees)
	fmt.Fprintf(out, "tick=%d blocks=%d proxies=%d renderer=%t step_ms=%.3f\n",
		s.Tick, s.Blocks, s.Proxies, s.Renderer, s.StepMS)
	fmt.Fprintf(out, "player=(%.2f, %.2f, %.2f) grounded=%t\n",
		s.Player[0], s.Player[1], s.Player[2], s.Grounded)
	return nil
}
