// Package client talks to a running dispenser over its JSON routes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/calvinmclean/babyapi"
)

// ErrRejected is returned when the dispenser answered but refused the operation
var ErrRejected = errors.New("rejected by dispenser")

// Dose identifies a slot by day and dose, like {"day":"monday","dose":1}
type Dose struct {
	// include NilResource so we don't implement Render/Bind which are not needed
	*babyapi.NilResource

	Day  string `json:"day"`
	Dose int    `json:"dose"`
}

func (d Dose) GetID() string {
	return d.Day + "-" + strconv.Itoa(d.Dose)
}

// Response is the body returned by /add_dose, /remove_dose and /dispense
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Slot    *int   `json:"slot,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type Client struct {
	client *babyapi.Client[*Dose]
	addr   string
}

func NewClient(addr string) *Client {
	addr = strings.TrimSuffix(addr, "/")
	return &Client{
		client: babyapi.NewClient[*Dose](addr, ""),
		addr:   addr,
	}
}

func (c Client) Add(ctx context.Context, day string, dose int) (Response, error) {
	return c.post(ctx, "/add_dose", Dose{Day: day, Dose: dose})
}

func (c Client) Remove(ctx context.Context, day string, dose int) (Response, error) {
	return c.post(ctx, "/remove_dose", Dose{Day: day, Dose: dose})
}

func (c Client) Dispense(ctx context.Context, day string, dose int) (Response, error) {
	return c.post(ctx, "/dispense", Dose{Day: day, Dose: dose})
}

// Filled lists the filled doses in slot order
func (c Client) Filled(ctx context.Context) ([]Dose, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.addr+"/get_filled_doses?format=detailed", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	var out struct {
		FilledDoses []Dose `json:"filled_doses"`
	}
	resp, err := c.client.MakeGenericRequest(req, &out)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	if resp.Response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, response: %v", resp.Response.StatusCode, resp.Body)
	}

	return out.FilledDoses, nil
}

func (c Client) post(ctx context.Context, path string, body Dose) (Response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("error encoding body: %w", err)
	}
	var bodyReader io.Reader = bytes.NewReader(bodyBytes)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr+path, bodyReader)
	if err != nil {
		return Response{}, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")

	var out Response
	resp, err := c.client.MakeGenericRequest(req, &out)
	if err != nil {
		return out, fmt.Errorf("error making request: %w", err)
	}

	if !out.Success {
		return out, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.Response.StatusCode, out.Message)
	}

	return out, nil
}
