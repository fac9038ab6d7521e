package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
)

func writeTickets(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("conversation_id,customer_issue,tech_response,resolution_time,issue_category,issue_status\n")
	for i := range 6 {
		fmt.Fprintf(&b, "hw-%d,printer paper jam,Replace the paper tray,30,Hardware,Resolved\n", i)
	}
	for i := range 6 {
		fmt.Fprintf(&b, "acc-%d,password login reset,Reset the password in the console,10,Access,Resolved\n", i)
	}
	path := filepath.Join(dir, "tickets.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write tickets: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("DESKCLUSTER_DB_PATH", filepath.Join(dir, "deskcluster.db"))
	t.Setenv("DESKCLUSTER_K", "2")
	return dir, writeTickets(t, dir)
}

func TestClustersFromInput(t *testing.T) {
	_, input := setupEnv(t)
	out, err := run(t, "--input", input, "clusters")
	if err != nil {
		t.Fatalf("clusters: %v", err)
	}
	var info struct {
		TotalClusters int `json:"totalClusters"`
		TotalTickets  int `json:"totalTickets"`
		Clusters      []struct {
			TicketCount int `json:"ticketCount"`
		} `json:"clusters"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.TotalClusters != 2 || info.TotalTickets != 12 || len(info.Clusters) != 2 {
		t.Errorf("info = %+v", info)
	}
}

func TestImportThenClassify(t *testing.T) {
	_, input := setupEnv(t)
	out, err := run(t, "--input", input, "import")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, `"total": 12`) {
		t.Errorf("import output = %s", out)
	}

	out, err = run(t, "classify", "printer", "jam")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var resp struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Category != "Hardware(6)" || resp.Confidence <= 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClusterBadID(t *testing.T) {
	_, input := setupEnv(t)
	if _, err := run(t, "--input", input, "cluster", "7"); err == nil {
		t.Fatal("expected error for unknown cluster")
	}
	if _, err := run(t, "--input", input, "cluster", "x"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestStabilityAgainstMismatch(t *testing.T) {
	dir, input := setupEnv(t)
	short := filepath.Join(dir, "short.csv")
	if err := os.WriteFile(short, []byte("h\n1,printer jam\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "--input", input, "stability", "--against", short)
	if !errors.Is(err, internalerr.ErrSampleMismatch) {
		t.Fatalf("err = %v, want ErrSampleMismatch", err)
	}
}

func TestQualityText(t *testing.T) {
	_, input := setupEnv(t)
	out, err := run(t, "--input", input, "quality", "--text")
	if err != nil {
		t.Fatalf("quality: %v", err)
	}
	if !strings.Contains(strings.ToLower(out), "silhouette") {
		t.Errorf("report = %s", out)
	}
}

func TestEmptyStore(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "clusters"); err == nil {
		t.Fatal("expected error for empty store")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "--log-level", "loud", "vocabulary"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}
