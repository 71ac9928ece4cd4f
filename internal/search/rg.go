// Package search finds text across the book's chapters. It shells out
// to ripgrep when available and falls back to a pure-Go scan otherwise.
package search

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type Result struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Preview string `json:"preview"`
}

type Response struct {
	Query     string   `json:"query"`
	Results   []Result `json:"results"`
	Truncated bool     `json:"truncated"`
}

var ErrRipgrepNotFound = errors.New("ripgrep (rg) not found")

// Ripgrep runs a fixed-string, smart-case search over markdown chapters
// under rootAbs.
func Ripgrep(rootAbs, query string, limit int) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{Query: query}, nil
	}
	if limit <= 0 {
		limit = 200
	}

	if _, err := exec.LookPath("rg"); err != nil {
		return Response{}, ErrRipgrepNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	args := []string{
		"--json",
		"--no-heading",
		"--line-number",
		"--color=never",
		"--smart-case",
		"--glob=*.md",
		"--glob=*.markdown",
		"--fixed-strings",
		query,
	}
	cmd := exec.CommandContext(ctx, "rg", args...)
	cmd.Dir = rootAbs

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Response{}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Response{}, err
	}

	if err := cmd.Start(); err != nil {
		return Response{}, err
	}

	// Keep a little stderr in case rg fails.
	var stderrBuf strings.Builder
	go func() {
		s := bufio.NewScanner(stderr)
		for s.Scan() {
			if stderrBuf.Len() < 4096 {
				stderrBuf.WriteString(s.Text())
				stderrBuf.WriteByte('\n')
			}
		}
	}()

	resp := Response{Query: query, Results: make([]Result, 0, 32)}
	s := bufio.NewScanner(stdout)
	for s.Scan() {
		var ev rgEvent
		if err := json.Unmarshal(s.Bytes(), &ev); err != nil || ev.Type != "match" {
			continue
		}
		resp.Results = append(resp.Results, Result{
			Path:    ev.Data.Path.Text,
			Line:    ev.Data.LineNumber,
			Preview: strings.TrimRight(ev.Data.Lines.Text, "\r\n"),
		})
		if len(resp.Results) >= limit {
			resp.Truncated = true
			break
		}
	}
	_ = stdout.Close()

	if resp.Truncated {
		// rg dies on the closed pipe once we stop reading; the results
		// already collected are the answer.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return resp, nil
	}

	if err := cmd.Wait(); err != nil {
		// Exit code 1 means no matches.
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() == 1 {
			return Response{Query: query}, nil
		}
		if msg := strings.TrimSpace(stderrBuf.String()); msg != "" {
			return Response{}, fmt.Errorf("rg failed: %s", msg)
		}
		return Response{}, err
	}

	return resp, nil
}

type rgEvent struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		Lines struct {
			Text string `json:"text"`
		} `json:"lines"`
		LineNumber int `json:"line_number"`
	} `json:"data"`
}
