package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/readiness -timeout=2m
func main() {
	url := flag.String("url", "http://localhost:8080/readiness", "the endpoint to poll")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after this long")
	interval := flag.Duration("interval", 5*time.Second, "wait this long between attempts")
	flag.Parse()

	client := &http.Client{Timeout: *interval}
	deadline := time.Now().Add(*timeout)
	var totalWaitTime time.Duration
	for {
		res, err := client.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println("service available:", res.Status)
				return
			}
			fmt.Println("service not ready:", res.Status)
		} else {
			fmt.Println(err)
		}
		if time.Now().After(deadline) {
			fmt.Printf("Giving up after %s", totalWaitTime)
			fmt.Println()
			os.Exit(1)
		}
		totalWaitTime += *interval
		fmt.Printf("Waiting %s", totalWaitTime)
		fmt.Println()
		time.Sleep(*interval)
	}
}
