package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.vocdoni.io/dvote/crypto/ethereum"
)

const (
	actionSetup  = "setup"
	actionStart  = "start"
	actionVote   = "vote"
	actionEnd    = "end"
	actionStatus = "status"
	actionWinner = "winner"
	actionEvents = "events"
)

// Config contains CLI inputs.
type Config struct {
	APIEndpoint string
	PrivKey     string
	Action      string
	Title       string
	Choices     string
	Whitelist   string
	Choice      int
	AfterSeq    uint64
	Limit       int
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Print(clientUsage())
		return fmt.Errorf("configuration: %w", err)
	}

	client := newClient(cfg.APIEndpoint)

	var signer *ethereum.SignKeys
	if cfg.PrivKey != "" {
		signer = ethereum.NewSignKeys()
		if err := signer.AddHexKey(cfg.PrivKey); err != nil {
			return fmt.Errorf("invalid private key: %w", err)
		}
	}

	switch cfg.Action {
	case actionSetup, actionStart, actionEnd, actionVote:
		if signer == nil {
			return fmt.Errorf("--privKey is required for action %q", cfg.Action)
		}
		if err := client.login(signer); err != nil {
			return fmt.Errorf("login as %s: %w", signer.Address().Hex(), err)
		}
		fmt.Printf("logged in as %s\n", signer.Address().Hex())
	}

	switch cfg.Action {
	case actionSetup:
		return runSetup(client, cfg)
	case actionStart:
		if err := client.startElection(); err != nil {
			return err
		}
		fmt.Println("election started")
		return printStatus(client, signer)
	case actionEnd:
		if err := client.endElection(); err != nil {
			return err
		}
		fmt.Println("election ended")
		return printWinner(client)
	case actionVote:
		if err := client.vote(cfg.Choice); err != nil {
			return err
		}
		fmt.Printf("vote for choice %d accepted\n", cfg.Choice)
		return printWinner(client)
	case actionStatus:
		return printStatus(client, signer)
	case actionWinner:
		return printWinner(client)
	case actionEvents:
		return printEvents(client, cfg.AfterSeq, cfg.Limit)
	}
	return fmt.Errorf("unknown action %q", cfg.Action)
}

// runSetup configures title, choices and whitelist in one shot and prints
// the resulting summary.
func runSetup(client *Client, cfg Config) error {
	if err := client.setTitle(cfg.Title); err != nil {
		return err
	}
	if err := client.setChoices(splitList(cfg.Choices)); err != nil {
		return err
	}
	if err := client.setWhitelist(splitList(cfg.Whitelist)); err != nil {
		return err
	}

	info, err := client.electionInfo()
	if err != nil {
		return err
	}
	fmt.Printf("poll %q configured: %d choices, %d whitelisted voters\n",
		info.Title, info.ChoiceCount, info.VoterCount)
	return nil
}

func printStatus(client *Client, signer *ethereum.SignKeys) error {
	info, err := client.electionInfo()
	if err != nil {
		return err
	}
	fmt.Printf("poll:    %q\n", info.Title)
	fmt.Printf("admin:   %s\n", info.Admin.Hex())
	fmt.Printf("active:  %t (epoch %d)\n", info.Active, info.Epoch)
	fmt.Printf("choices: %d, voters: %d\n", info.ChoiceCount, info.VoterCount)
	if !info.StartedAt.IsZero() {
		fmt.Printf("started: %s\n", info.StartedAt)
	}
	if !info.EndedAt.IsZero() {
		fmt.Printf("ended:   %s\n", info.EndedAt)
	}

	if signer == nil {
		return nil
	}
	status, err := client.voterStatus(signer.Address())
	if err != nil {
		return err
	}
	fmt.Printf("you (%s): whitelisted=%t", status.Identity.Hex(), status.Whitelisted)
	if status.VotedThisEpoch {
		fmt.Printf(", voted for choice %d at %s", status.ChoiceIndex, status.VotedAt)
	}
	fmt.Println()
	return nil
}

func printWinner(client *Client) error {
	choicesResp, err := client.choices()
	if err != nil {
		return err
	}
	for i, choice := range choicesResp.Choices {
		fmt.Printf("  [%d] %s: %d votes\n", i, choice.Label, choice.Votes)
	}

	winner, err := client.winner()
	if err != nil {
		return err
	}
	switch {
	case winner.HasTie:
		fmt.Printf("tie at %d votes, no winner\n", winner.Votes)
	case winner.HasWinner:
		fmt.Printf("winner: [%d] %s with %d votes\n", winner.Index, winner.Label, winner.Votes)
	default:
		fmt.Println("no votes cast yet")
	}
	return nil
}

func printEvents(client *Client, afterSeq uint64, limit int) error {
	resp, err := client.events(afterSeq, limit)
	if err != nil {
		return err
	}
	for _, event := range resp.Events {
		line := fmt.Sprintf("#%d %s epoch=%d", event.Seq, event.Kind, event.Epoch)
		if event.Identity != nil {
			line += " identity=" + event.Identity.Hex()
		}
		if event.ChoiceIndex != nil {
			line += fmt.Sprintf(" choice=%d", *event.ChoiceIndex)
		}
		if event.Title != "" {
			line += fmt.Sprintf(" title=%q", event.Title)
		}
		if event.Count > 0 {
			line += fmt.Sprintf(" count=%d", event.Count)
		}
		fmt.Println(line)
	}
	fmt.Printf("%d events shown, journal at seq %d\n", len(resp.Events), resp.LastSeq)
	return nil
}

// splitList splits a comma separated flag value, trimming blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseConfig(args []string) (Config, error) {
	cfg := Config{}
	flagSet := flag.NewFlagSet("client", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	flagSet.StringVar(&cfg.APIEndpoint, "apiEndpoint", "http://localhost:8080", "ballot box API endpoint URL")
	flagSet.StringVar(&cfg.PrivKey, "privKey", "", "hex private key used to sign the login challenge")
	flagSet.StringVar(
		&cfg.Action,
		"action",
		"",
		"workflow action: setup | start | vote | end | status | winner | events",
	)
	flagSet.StringVar(&cfg.Title, "title", "", "poll title (setup)")
	flagSet.StringVar(&cfg.Choices, "choices", "", "comma separated choice labels (setup)")
	flagSet.StringVar(&cfg.Whitelist, "whitelist", "", "comma separated voter addresses (setup)")
	flagSet.IntVar(&cfg.Choice, "choice", -1, "choice index to vote for (vote)")
	flagSet.Uint64Var(&cfg.AfterSeq, "afterSeq", 0, "list only events after this sequence number (events)")
	flagSet.IntVar(&cfg.Limit, "limit", 0, "maximum number of events to list (events)")
	if err := flagSet.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	switch cfg.Action {
	case actionSetup:
		if cfg.Title == "" {
			return Config{}, fmt.Errorf("--title is required for action %q", actionSetup)
		}
		if cfg.Choices == "" {
			return Config{}, fmt.Errorf("--choices is required for action %q", actionSetup)
		}
		if cfg.Whitelist == "" {
			return Config{}, fmt.Errorf("--whitelist is required for action %q", actionSetup)
		}
	case actionVote:
		if cfg.Choice < 0 {
			return Config{}, fmt.Errorf("--choice is required for action %q", actionVote)
		}
	case actionStart, actionEnd, actionStatus, actionWinner, actionEvents:
	default:
		return Config{}, fmt.Errorf("--action must be one of setup, start, vote, end, status, winner, events")
	}

	return cfg, nil
}

func clientUsage() string {
	return `Usage:
  go run ./cmd/client --privKey <hex-key> --action setup \
    --title <poll-title> --choices "A,B,C" --whitelist "0x...,0x..."
  go run ./cmd/client --privKey <hex-key> --action start|end
  go run ./cmd/client --privKey <hex-key> --action vote --choice <index>
  go run ./cmd/client --action status [--privKey <hex-key>]
  go run ./cmd/client --action winner
  go run ./cmd/client --action events [--afterSeq <n>] [--limit <n>]
`
}
