// Command demo uploads a PDF to a running server's streaming endpoint and
// renders the staged progress plus the final report on the terminal.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/compliance-copilot/backend/internal/domain/reports"
	"github.com/compliance-copilot/backend/internal/sse"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	file := flag.String("file", "", "path to the PDF to analyze")
	user := flag.String("user", "anonymous", "user identifier")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: demo -file document.pdf [-server URL] [-user id]")
		os.Exit(2)
	}

	if err := run(*server, *file, *user); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(server, file, user string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(file))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/analyze_sse?user_id=%s", server, user)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server rejected upload (%d): %s", resp.StatusCode, msg)
	}

	dec := sse.NewDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		if err != nil {
			// stream ended without a terminal event
			return fmt.Errorf("stream closed early: %w", err)
		}

		switch ev.Name {
		case "done":
			var report reports.Report
			if err := json.Unmarshal([]byte(ev.Data), &report); err != nil {
				return fmt.Errorf("bad done payload: %w", err)
			}
			printReport(&report)
			return nil
		case "error":
			var payload struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal([]byte(ev.Data), &payload)
			return fmt.Errorf("analysis failed: %s", payload.Message)
		default:
			fmt.Printf("[%s] %s\n", ev.Name, ev.Data)
		}
	}
}

func printReport(r *reports.Report) {
	fmt.Println()
	fmt.Printf("Document:     %s (%d pages)\n", r.DocName, r.PageCount)
	fmt.Printf("Overall risk: %.1f%%\n", r.OverallRisk)
	fmt.Printf("Summary:      %s\n", r.Summary)
	fmt.Printf("Flags found:  %d\n", len(r.Flags))

	for i, f := range r.Flags {
		if i == 3 {
			fmt.Printf("  ... and %d more\n", len(r.Flags)-3)
			break
		}
		fmt.Printf("  %d. %s (severity %d/5)\n", i+1, f.Title, f.Severity)
		fmt.Printf("     %s\n", f.WhyItMatters)
	}
}
