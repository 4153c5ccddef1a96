package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const (
	baseURL      = "http://localhost:3000/api"
	pollInterval = 2 * time.Second
	pollTimeout  = 5 * time.Minute
)

// Simplified DTOs for the script
type SubmitResponse struct {
	Data struct {
		RequestId string `json:"request_id"`
	} `json:"data"`
}

type ProgressResponse struct {
	Data struct {
		RequestId         string `json:"request_id"`
		Status            string `json:"status"`
		CompletedSections int    `json:"completed_sections"`
		CurrentSection    int    `json:"current_section"`
		TotalSections     int    `json:"total_sections"`
		Error             *struct {
			Code   string `json:"code"`
			Detail string `json:"detail"`
		} `json:"error"`
	} `json:"data"`
}

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // Generation runs detached, polling is cheap
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Blueprint Generation Simulation\n")

	// 1. Submit a generation request
	color.Yellow("\n[USER] 1. Submit Generation Request")
	submitReq := map[string]interface{}{
		"full_name":    "Alex Rivera",
		"current_role": "Backend Engineer",
		"primary_goal": "Transition into an engineering management role within two years",
		"age":          29,
		"interests":    []string{"distributed systems", "mentoring", "trail running"},
		"constraints":  "limited evening availability",
		"extra_notes":  "Prefers structured weekly plans",
	}
	resp, body, err := sendRequest("POST", "/generation/v1", submitReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var submitResp SubmitResponse
	json.Unmarshal(body, &submitResp)
	requestID := submitResp.Data.RequestId
	if requestID == "" {
		color.Red("No request_id returned")
		prettyPrint(string(body))
		os.Exit(1)
	}
	fmt.Printf("Request ID: %s\n", requestID)

	// 2. Poll progress until terminal
	color.Yellow("\n[USER] 2. Poll Progress")
	deadline := time.Now().Add(pollTimeout)
	lastStatus := ""
	for {
		if time.Now().After(deadline) {
			color.Red("Timed out waiting for terminal status")
			os.Exit(1)
		}

		_, body, err = sendRequest("GET", "/generation/v1/"+requestID, nil)
		if err != nil {
			color.Red("Poll failed: %v", err)
			os.Exit(1)
		}

		var progress ProgressResponse
		json.Unmarshal(body, &progress)
		d := progress.Data

		line := fmt.Sprintf("status=%s sections=%d/%d", d.Status, d.CompletedSections, d.TotalSections)
		if d.CurrentSection > 0 {
			line += fmt.Sprintf(" current=%d", d.CurrentSection)
		}
		if line != lastStatus {
			fmt.Println(line)
			lastStatus = line
		}

		if d.Status == "complete" {
			color.Green("\nGeneration complete (%d sections)", d.CompletedSections)
			break
		}
		if d.Status == "failed" {
			if d.Error != nil {
				color.Red("\nGeneration failed: %s (%s)", d.Error.Code, d.Error.Detail)
			} else {
				color.Red("\nGeneration failed")
			}
			os.Exit(1)
		}

		time.Sleep(pollInterval)
	}

	// 3. Fetch the persisted report
	color.Yellow("\n[USER] 3. Fetch Persisted Report")
	resp, body, err = sendRequest("GET", "/report/v1/"+requestID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var reportResp map[string]interface{}
	json.Unmarshal(body, &reportResp)
	if data, ok := reportResp["data"].(map[string]interface{}); ok {
		if doc, ok := data["document"].(map[string]interface{}); ok {
			fmt.Printf("Document sections: %d\n", len(doc))
			for k := range doc {
				fmt.Printf("  - %s\n", k)
			}
		} else {
			prettyPrint(data)
		}
	} else {
		prettyPrint(reportResp)
	}

	color.Cyan("\n✅ Simulation Complete")
}
