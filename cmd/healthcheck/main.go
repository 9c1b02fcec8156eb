package main

import (
	"net/http"
	"os"
)

func main() {
	port := os.Getenv("AUDIT_PORT")
	if port == "" {
		port = "8880"
	}
	resp, err := http.Get("http://localhost:" + port + "/__audit/status")
	if err != nil || resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
