package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"todo_webapp/internal/service"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"
)

const seedSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text", "deadline"],
    "properties": {
      "text": {"type": "string", "pattern": "\\S"},
      "deadline": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}[T ]\\d{2}:\\d{2}"},
      "completed": {"type": "boolean"}
    }
  }
}`

var compiledSeedSchema = jsonschema.MustCompileString("seed.schema.json", seedSchema)

// SeedEntry is one task of a seed file.
type SeedEntry struct {
	Text      string `json:"text"`
	Deadline  string `json:"deadline"`
	Completed bool   `json:"completed"`
}

// SeedError is one schema violation in a seed file.
type SeedError struct {
	Path    string
	Message string
}

func (e *SeedError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ParseSeed validates data against the seed schema and decodes it.
func ParseSeed(data []byte) ([]SeedEntry, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := compiledSeedSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, firstCause(ve)
		}
		return nil, err
	}

	var entries []SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return entries, nil
}

// firstCause walks down to the leaf error, which names the offending field.
func firstCause(ve *jsonschema.ValidationError) error {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &SeedError{Path: strings.TrimPrefix(ve.InstanceLocation, "/"), Message: ve.Message}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Add every task from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries, err := ParseSeed(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			ctx := cmd.Context()
			for _, e := range entries {
				task, err := a.board.Add(ctx, service.Answer(e.Text, e.Deadline))
				if err != nil {
					return err
				}
				if e.Completed {
					if _, err := a.board.Toggle(ctx, task.ID); err != nil {
						return err
					}
				}
			}
			ok(cmd.OutOrStdout(), fmt.Sprintf("seeded %d tasks", len(entries)))
			return nil
		},
	}
}
