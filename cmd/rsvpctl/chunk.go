package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rsvp-chunker/internal/app"
	"rsvp-chunker/internal/chunker"
	"rsvp-chunker/internal/engine"
	"rsvp-chunker/internal/textload"
	"rsvp-chunker/internal/tokenizer"
)

// chunkOptions holds the validated options for the chunk command.
type chunkOptions struct {
	target        int
	progressEvery int
	maxBytes      int64
	quiet         bool
	withTokens    bool
}

// chunkEnv carries what runChunk touches outside its arguments.
type chunkEnv struct {
	log    *slog.Logger
	load   tokenizer.Loader
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func chunkCmd(deps app.Deps) *cobra.Command {
	opts := chunkOptions{maxBytes: deps.Config.MaxUploadSize}

	cmd := &cobra.Command{
		Use:   "chunk [file]",
		Short: "Split a .txt or .pdf file (or stdin) into chunks",
		Long: `Split text into display chunks of roughly --target characters.

Chunks are written to stdout as JSON lines. Progress goes to stderr.`,
		Example: `  rsvpctl chunk novel.txt --target 12
  cat article.txt | rsvpctl chunk --quiet > chunks.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.target <= 0 {
				return fmt.Errorf("--target must be positive: %w", engine.ErrInvalidTarget)
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			env := chunkEnv{
				log:    deps.Log,
				load:   deps.Tokenizer,
				stdin:  cmd.InOrStdin(),
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
			}
			return runChunk(cmd.Context(), env, path, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.target, "target", "t", deps.Config.DefaultTargetLength, "Target chunk length in characters")
	cmd.Flags().IntVar(&opts.progressEvery, "progress-every", deps.Config.ProgressEvery, "Tokens between progress reports")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not report progress")
	cmd.Flags().BoolVar(&opts.withTokens, "tokens", false, "Include each chunk's tokens in the output")

	return cmd
}

// chunkLine is one line of output.
type chunkLine struct {
	Index int `json:"index"`
	chunker.Chunk
	Tokens []chunker.Token `json:"tokens,omitempty"`
}

func runChunk(ctx context.Context, env chunkEnv, path string, opts chunkOptions) error {
	text, err := readInput(env.stdin, path, opts.maxBytes)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng := engine.New(env.log, env.load, engine.Options{ProgressEvery: opts.progressEvery})
	eng.Start(ctx)
	if err := engine.WaitReady(ctx, eng.Events()); err != nil {
		return err
	}

	jobID := uuid.New()
	if err := eng.Submit(engine.Submit{JobID: jobID, Text: text, TargetLength: opts.target}); err != nil {
		return err
	}
	result, err := engine.Await(ctx, eng.Events(), jobID, func(p engine.Progress) {
		if !opts.quiet {
			fmt.Fprintf(env.stderr, "\rsegmenting %d/%d tokens", p.Processed, p.Total)
		}
	})
	if !opts.quiet {
		fmt.Fprintln(env.stderr)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(env.stdout)
	enc.SetEscapeHTML(false)
	for i, c := range result.Chunks {
		line := chunkLine{Index: i, Chunk: c}
		if opts.withTokens {
			line.Tokens = result.Tokens[c.StartToken : c.EndToken+1]
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write chunk %d: %w", i, err)
		}
	}
	return nil
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(stdin io.Reader, path string, maxBytes int64) (string, error) {
	if path == "" || path == "-" {
		return textload.Read(stdin, textload.TypeText, maxBytes)
	}
	contentType, err := textload.DetectType(path, "")
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return textload.Read(f, contentType, maxBytes)
}
