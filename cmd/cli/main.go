// Command finledger is a small CLI client for the finledger HTTP API.
//
// Usage:
//
//	finledger register -server URL -email a@x.com
//	finledger signin   -server URL -email a@x.com
//	finledger add      -server URL -token T -amount 50 -type expense -date 2024-01-15 -category food [-desc text]
//	finledger list     -server URL -token T
//	finledger rm       -server URL -token T -id 11
//
// The password for register/signin is prompted (or read from -password).
// The token may also come from the FINLEDGER_TOKEN environment variable.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stdout, "Usage: finledger <register|signin|add|list|rm> [flags]")
		return fmt.Errorf("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register", "signin":
		return runAuth(cmd, rest, stdin, stdout, stderr)
	case "add":
		return runAdd(rest, stdout, stderr)
	case "list":
		return runList(rest, stdout, stderr)
	case "rm":
		return runRm(rest, stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runAuth(cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", "http://localhost:3000", "API base URL")
	email := fs.String("email", "", "Account email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("missing required flag: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	body := map[string]string{"email": *email, "password": password}
	var out map[string]any
	if err := call(http.MethodPost, *server+"/"+cmd, "", body, &out); err != nil {
		return err
	}

	switch cmd {
	case "register":
		fmt.Fprintf(stdout, "Registered %s (id=%v)\n", *email, out["id"])
	case "signin":
		fmt.Fprintf(stdout, "%v\n", out["token"])
	}
	return nil
}

func runAdd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", "http://localhost:3000", "API base URL")
	tok := fs.String("token", os.Getenv("FINLEDGER_TOKEN"), "Access token")
	amount := fs.Float64("amount", 0, "Amount (positive)")
	typ := fs.String("type", "", "income or expense")
	date := fs.String("date", "", "Date YYYY-MM-DD")
	category := fs.String("category", "", "Category")
	desc := fs.String("desc", "", "Description (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tok == "" {
		return fmt.Errorf("missing token (flag -token or FINLEDGER_TOKEN)")
	}

	body := map[string]any{
		"amount":   *amount,
		"type":     *typ,
		"date":     *date,
		"category": *category,
	}
	if *desc != "" {
		body["description"] = *desc
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := call(http.MethodPost, *server+"/transactions", *tok, body, &out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created transaction %d\n", out.ID)
	return nil
}

func runList(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", "http://localhost:3000", "API base URL")
	tok := fs.String("token", os.Getenv("FINLEDGER_TOKEN"), "Access token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tok == "" {
		return fmt.Errorf("missing token (flag -token or FINLEDGER_TOKEN)")
	}

	var out []struct {
		ID          int64   `json:"id"`
		Amount      float64 `json:"amount"`
		Type        string  `json:"type"`
		Date        string  `json:"date"`
		Category    string  `json:"category"`
		Description *string `json:"description"`
	}
	if err := call(http.MethodGet, *server+"/transactions", *tok, nil, &out); err != nil {
		return err
	}
	for _, t := range out {
		desc := ""
		if t.Description != nil {
			desc = " " + *t.Description
		}
		fmt.Fprintf(stdout, "%d\t%s\t%s\t%.2f\t%s%s\n", t.ID, t.Date, t.Type, t.Amount, t.Category, desc)
	}
	return nil
}

func runRm(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", "http://localhost:3000", "API base URL")
	tok := fs.String("token", os.Getenv("FINLEDGER_TOKEN"), "Access token")
	id := fs.Int64("id", 0, "Transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tok == "" {
		return fmt.Errorf("missing token (flag -token or FINLEDGER_TOKEN)")
	}
	if *id <= 0 {
		return fmt.Errorf("missing or invalid -id")
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := call(http.MethodDelete, fmt.Sprintf("%s/transactions/%d", *server, *id), *tok, nil, &out); err != nil {
		return err
	}
	fmt.Fprintln(stdout, out.Message)
	return nil
}

// call performs one JSON request/response round trip. Non-2xx answers are
// turned into errors carrying the server's message.
func call(method, url, bearer string, body, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &e) == nil {
			if e.Error != "" {
				return fmt.Errorf("%s: %s", resp.Status, e.Error)
			}
			if e.Message != "" {
				return fmt.Errorf("%s: %s", resp.Status, e.Message)
			}
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// readPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise (pipes, tests).
func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
