// Command shadow_compare replays a set of read-only requests against the Go
// intake API and the legacy intake service, and reports status or body
// mismatches. Run it against staging before cutting traffic over.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type result struct {
	target        target
	intakeStatus  int
	legacyStatus  int
	statusMatch   bool
	bodyMatch     bool
	err           error
	intakeLatency time.Duration
	legacyLatency time.Duration
}

// volatileKeys are response fields expected to differ between the two stacks
// on every request. They are stripped before comparing bodies.
var volatileKeys = map[string]bool{
	"request_id": true,
	"meta":       true,
	"updated_at": true,
}

func main() {
	var (
		intakeBase  string
		legacyBase  string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&intakeBase, "intake-base", "http://localhost:8080", "Go intake API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "legacy intake service base URL")
	flag.StringVar(&token, "token", os.Getenv("SHADOW_COMPARE_TOKEN"), "bearer token for authenticated routes")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var results []result
	breaking := 0
	for _, t := range targets {
		res := compare(client, intakeBase, legacyBase, token, t)
		if t.Critical && (res.err != nil || !res.statusMatch || !res.bodyMatch) {
			breaking++
		}
		results = append(results, res)
	}

	report(results)
	if breaking > 0 {
		fmt.Printf("%d critical target(s) diverged\n", breaking)
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		Targets []target `json:"targets"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compare(client *http.Client, intakeBase, legacyBase, token string, tgt target) result {
	res := result{target: tgt}

	intakeBody, intakeStatus, intakeDur, err := fetch(client, intakeBase, token, tgt)
	if err != nil {
		res.err = fmt.Errorf("intake request: %w", err)
		return res
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, token, tgt)
	if err != nil {
		res.err = fmt.Errorf("legacy request: %w", err)
		return res
	}

	res.intakeStatus = intakeStatus
	res.legacyStatus = legacyStatus
	res.intakeLatency = intakeDur
	res.legacyLatency = legacyDur
	res.statusMatch = intakeStatus == legacyStatus
	res.bodyMatch = bodiesEqual(intakeBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, token string, tgt target) ([]byte, int, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if json.Unmarshal(a, &aj) != nil || json.Unmarshal(b, &bj) != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

// normalize strips volatile fields and collapses whole-number floats so the
// two stacks' JSON encoders compare equal.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			if volatileKeys[k] {
				delete(val, k)
				continue
			}
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(results []result) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.err != nil:
			status = "ERROR"
		case !res.statusMatch || !res.bodyMatch:
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.target.Method, res.target.Path)
		if res.err != nil {
			fmt.Printf("  error: %v\n", res.err)
			continue
		}
		fmt.Printf("  intake: %d (%s) | legacy: %d (%s)\n",
			res.intakeStatus, res.intakeLatency, res.legacyStatus, res.legacyLatency)
		fmt.Printf("  status match: %t | body match: %t | critical: %t\n",
			res.statusMatch, res.bodyMatch, res.target.Critical)
	}
}
