package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"gitlab.com/dirk.krummacker/favorite-contacts/pkg/model"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "the base URL of the contacts service")
	flag.Parse()

	name, phone, email := "Marcus Antonius", "+39 999 777 555", "marcus@example.com"
	postBody, _ := json.Marshal(model.ContactRequest{Name: &name, Phone: &phone})
	putBody, _ := json.Marshal(model.ContactRequest{Email: &email})
	patchBody, _ := json.Marshal(model.FavoriteRequest{Favorite: true})

	fmt.Println()
	fmt.Println("  Elements      POST       PUT     PATCH       GET    DELETE ")
	fmt.Println("-------------------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]string, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := sendPostRequest(*baseURL, bytes.NewReader(postBody))
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, "", http.MethodPut, bytes.NewReader(putBody))
			}
			callInLoop(ids, f)
		}
		{
			// PATCH requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, "/favorite", http.MethodPatch, bytes.NewReader(patchBody))
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, "", http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// DELETE requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, "", http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

// callInLoop calls f for every id in random order and prints the average duration in
// microseconds.
func callInLoop(ids []string, f func(id string) int64) {
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func sendPostRequest(baseURL string, bodyReader io.Reader) (string, int64) {
	resBody, duration := sendRequest(http.MethodPost, baseURL+"/contacts", bodyReader)
	var contact model.Contact
	err := json.Unmarshal(resBody, &contact)
	if err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return contact.Id, duration
}

func sendRequestForID(baseURL string, id string, suffix string, method string, bodyReader io.Reader) int64 {
	_, duration := sendRequest(method, baseURL+"/contacts/"+id+suffix, bodyReader)
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	if res.StatusCode >= http.StatusBadRequest {
		var message model.Message
		_ = json.Unmarshal(resBody, &message)
		fmt.Println("unexpected status", res.Status, message.Message)
		panic(res.Status)
	}
	return resBody, after - before
}
