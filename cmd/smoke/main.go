// Command smoke drives a running parcelgraph server through one sync of a
// three parcel scenario and checks the reported counts.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/agenthands/parcelgraph/internal/core/model"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	wait := flag.Duration("wait", 2*time.Second, "delay before the first request")
	flag.Parse()

	time.Sleep(*wait)
	fmt.Println("Starting smoke test...")

	// Fresh ids per run so the first sync always creates.
	prefix := fmt.Sprintf("smoke-%d-", time.Now().Unix())
	parcels := []model.Parcel{
		{ID: prefix + "A", Owner: prefix + "O1", Geometry: "POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))"},
		{ID: prefix + "B", Owner: prefix + "O2", Geometry: "POLYGON((2 0, 4 0, 4 2, 2 2, 2 0))"},
		{ID: prefix + "C", Owner: prefix + "O1", Geometry: "POLYGON((0 2, 2 2, 2 4, 0 4, 0 2))"},
	}
	payload := map[string]interface{}{"parcels": parcels}

	fmt.Println("1. Health...")
	if err := send(*baseURL, http.MethodGet, "/health", nil, nil); err != nil {
		fail("health", err)
	}

	fmt.Println("2. First sync...")
	var first model.SyncReport
	if err := send(*baseURL, http.MethodPost, "/sync", payload, &first); err != nil {
		fail("first sync", err)
	}
	expect("parcels created", first.ParcelsCreated, 3)
	expect("owners created", first.OwnersCreated, 2)
	expect("adjacency created", first.AdjacencyCreated, 4)
	expect("neighbors created", first.NeighborsCreated, 2)

	fmt.Println("3. Repeated sync...")
	var second model.SyncReport
	if err := send(*baseURL, http.MethodPost, "/sync", payload, &second); err != nil {
		fail("repeated sync", err)
	}
	expect("write operations", second.WriteOperations, 0)

	fmt.Println("4. Stats...")
	var stats model.StoreStats
	if err := send(*baseURL, http.MethodGet, "/stats", nil, &stats); err != nil {
		fail("stats", err)
	}
	fmt.Printf("store: %d parcels, %d owners, %d adjacency, %d neighbor relationships\n",
		stats.Parcels, stats.Owners, stats.Adjacency, stats.Neighbors)

	fmt.Println("PASSED")
}

func send(baseURL, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func expect(what string, got, want int) {
	if got != want {
		fail(what, fmt.Errorf("got %d, want %d", got, want))
	}
}

func fail(step string, err error) {
	fmt.Printf("FAILED: %s: %v\n", step, err)
	os.Exit(1)
}
