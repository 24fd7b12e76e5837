// Package main
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/ballotbox/api"
	"github.com/vocdoni/ballotbox/election"
	"github.com/vocdoni/ballotbox/internal"
	"go.vocdoni.io/dvote/crypto/ethereum"
)

// Client wraps authenticated HTTP calls to the ballot box API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func newClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// doJSON sends an HTTP request and decodes a JSON response into target when provided.
func (c *Client) doJSON(method, path string, query url.Values, body, target any) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, fullURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request %s %s: %w", method, fullURL, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			fmt.Printf("warning: close response body: %v\n", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		trimmed := strings.TrimSpace(string(respBody))
		if trimmed == "" {
			trimmed = "no response body"
		}
		return fmt.Errorf("request %s %s failed with status %d: %s", method, fullURL, resp.StatusCode, trimmed)
	}

	if target == nil {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return fmt.Errorf("drain response body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, fullURL, err)
	}
	return nil
}

// login runs the challenge response flow for the signer and keeps the
// returned token for the calls that follow.
func (c *Client) login(signer *ethereum.SignKeys) error {
	address := signer.Address().Hex()

	var challengeResp api.ChallengeResponse
	req := api.ChallengeRequest{Address: address}
	if err := c.doJSON(http.MethodPost, "/auth/challenge", nil, req, &challengeResp); err != nil {
		return fmt.Errorf("POST /auth/challenge: %w", err)
	}
	if challengeResp.Challenge == "" {
		return fmt.Errorf("POST /auth/challenge: empty challenge in response")
	}

	signature, err := signer.SignEthereum([]byte(challengeResp.Challenge))
	if err != nil {
		return fmt.Errorf("sign challenge: %w", err)
	}

	var loginResp api.LoginResponse
	loginReq := api.LoginRequest{
		Address:   address,
		Challenge: challengeResp.Challenge,
		Signature: internal.HexBytes(signature),
	}
	if err := c.doJSON(http.MethodPost, "/auth/login", nil, loginReq, &loginResp); err != nil {
		return fmt.Errorf("POST /auth/login: %w", err)
	}
	if loginResp.Token == "" {
		return fmt.Errorf("POST /auth/login: empty token in response")
	}
	c.token = loginResp.Token
	return nil
}

func (c *Client) electionInfo() (*api.ElectionInfo, error) {
	var resp api.ElectionInfo
	if err := c.doJSON(http.MethodGet, "/election", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("GET /election: %w", err)
	}
	return &resp, nil
}

func (c *Client) setTitle(title string) error {
	req := api.SetTitleRequest{Title: title}
	if err := c.doJSON(http.MethodPut, "/election/title", nil, req, nil); err != nil {
		return fmt.Errorf("PUT /election/title: %w", err)
	}
	return nil
}

func (c *Client) setChoices(labels []string) error {
	req := api.SetChoicesRequest{Choices: labels}
	if err := c.doJSON(http.MethodPut, "/election/choices", nil, req, nil); err != nil {
		return fmt.Errorf("PUT /election/choices: %w", err)
	}
	return nil
}

func (c *Client) choices() (*api.ChoicesResponse, error) {
	var resp api.ChoicesResponse
	if err := c.doJSON(http.MethodGet, "/election/choices", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("GET /election/choices: %w", err)
	}
	return &resp, nil
}

func (c *Client) setWhitelist(identities []string) error {
	req := api.SetWhitelistRequest{Identities: identities}
	if err := c.doJSON(http.MethodPut, "/election/whitelist", nil, req, nil); err != nil {
		return fmt.Errorf("PUT /election/whitelist: %w", err)
	}
	return nil
}

func (c *Client) startElection() error {
	if err := c.doJSON(http.MethodPost, "/election/start", nil, nil, nil); err != nil {
		return fmt.Errorf("POST /election/start: %w", err)
	}
	return nil
}

func (c *Client) endElection() error {
	if err := c.doJSON(http.MethodPost, "/election/end", nil, nil, nil); err != nil {
		return fmt.Errorf("POST /election/end: %w", err)
	}
	return nil
}

func (c *Client) vote(choiceIndex int) error {
	req := api.VoteRequest{ChoiceIndex: choiceIndex}
	if err := c.doJSON(http.MethodPost, "/election/vote", nil, req, nil); err != nil {
		return fmt.Errorf("POST /election/vote: %w", err)
	}
	return nil
}

func (c *Client) voterStatus(address common.Address) (*api.VoterStatusResponse, error) {
	var resp api.VoterStatusResponse
	path := fmt.Sprintf("/election/voters/%s", url.PathEscape(address.Hex()))
	if err := c.doJSON(http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return &resp, nil
}

func (c *Client) winner() (*election.Winner, error) {
	var resp election.Winner
	if err := c.doJSON(http.MethodGet, "/election/winner", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("GET /election/winner: %w", err)
	}
	return &resp, nil
}

func (c *Client) events(afterSeq uint64, limit int) (*api.EventsResponse, error) {
	query := url.Values{}
	if afterSeq > 0 {
		query.Set("afterSeq", strconv.FormatUint(afterSeq, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp api.EventsResponse
	if err := c.doJSON(http.MethodGet, "/election/events", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("GET /election/events: %w", err)
	}
	return &resp, nil
}
