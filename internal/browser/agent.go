package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentstream/talentstream/internal/search"
	consolestream "github.com/wolfeidau/console-stream"
)

// QueryEnvVar carries the JSON-encoded search query to the agent script.
const QueryEnvVar = "TALENTSTREAM_QUERY"

var ErrAgentCommandRequired = errors.New("browser agent command is required")

// Config configures the subprocess job-search agent.
type Config struct {
	// Command is the browser automation script to run. It receives the
	// query as JSON in the TALENTSTREAM_QUERY environment variable, writes
	// progress lines to stdout, and finishes with either a JSON result
	// document or the raw listings HTML.
	Command string
	Args    []string

	// FlushInterval controls how often buffered output is surfaced as
	// progress. Defaults to 1s.
	FlushInterval time.Duration
}

// SubprocessAgent drives an external headless-browser script and turns its
// output into postings.
type SubprocessAgent struct {
	cfg Config
}

var _ search.JobSearcher = &SubprocessAgent{}

func NewSubprocessAgent(cfg Config) (*SubprocessAgent, error) {
	if cfg.Command == "" {
		return nil, ErrAgentCommandRequired
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &SubprocessAgent{cfg: cfg}, nil
}

// Ready reports whether the agent command resolves on PATH.
func (a *SubprocessAgent) Ready(_ context.Context) error {
	_, err := exec.LookPath(a.cfg.Command)
	return err
}

// Search runs the agent script to completion. Plain stdout lines are
// forwarded through onProgress; everything from the first line opening a
// JSON document or HTML tag onward is collected as the result.
func (a *SubprocessAgent) Search(ctx context.Context, query search.Query, onProgress func(string)) ([]search.Posting, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	log := zerolog.Ctx(ctx)

	process := consolestream.NewProcess(a.cfg.Command, a.cfg.Args,
		consolestream.WithPipeMode(),
		consolestream.WithFlushInterval(a.cfg.FlushInterval),
		consolestream.WithEnvMap(map[string]string{QueryEnvVar: string(payload)}),
	)

	var (
		pending  bytes.Buffer
		result   bytes.Buffer
		inResult bool
	)

	consumeLine := func(line string) {
		if inResult {
			result.WriteString(line)
			result.WriteByte('\n')
			return
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "<") {
			inResult = true
			result.WriteString(line)
			result.WriteByte('\n')
			return
		}
		if trimmed != "" && onProgress != nil {
			onProgress(trimmed)
		}
	}

	for event, err := range process.ExecuteAndStream(ctx) {
		if err != nil {
			return nil, fmt.Errorf("browser agent failed: %w", err)
		}

		switch e := event.Event.(type) {
		case *consolestream.ProcessStart:
			log.Debug().Int("pid", e.PID).Str("command", a.cfg.Command).Msg("browser agent started")

		case *consolestream.OutputData:
			pending.Write(e.Data)
			for {
				line, rest, found := bytes.Cut(pending.Bytes(), []byte("\n"))
				if !found {
					break
				}
				consumeLine(string(line))
				remaining := append([]byte(nil), rest...)
				pending.Reset()
				pending.Write(remaining)
			}

		case *consolestream.ProcessEnd:
			if pending.Len() > 0 {
				consumeLine(pending.String())
			}
			if e.ExitCode != 0 {
				return nil, fmt.Errorf("browser agent exited with code %d", e.ExitCode)
			}
			return a.parseResult(result.Bytes())
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, errors.New("browser agent stream ended unexpectedly")
}

type resultDocument struct {
	Jobs []search.Posting `json:"jobs"`
}

func (a *SubprocessAgent) parseResult(data []byte) ([]search.Posting, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("browser agent produced no result")
	}

	if trimmed[0] == '<' {
		return ParseListings(bytes.NewReader(trimmed))
	}

	var doc resultDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode agent result: %w", err)
	}
	return doc.Jobs, nil
}
