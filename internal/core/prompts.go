package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
)

// Prompts is the pair of editable templates the suggestions start from.
type Prompts struct {
	GymPrompt string `json:"gym_prompt"`
	WodPrompt string `json:"wod_prompt"`
}

const defaultGymPrompt = "Based on my recent gym workout history focusing on strength training.\n" +
	"Please suggest a workout plan for today, starting with warm-up and following with the main exercises. " +
	"Keep in mind a high-intensity level. Suggest 5 min warm-up & stretching exercises relevant to the main exercises. " +
	"Include exactly 5 types of exercises in the main exercises. Each exercise can be from 3 to 5 sets. " +
	"The exercises must be limited to 2 body parts per session, for example - chest and back, or shoulders and legs. " +
	"Do not suggest the same body parts that were trained in the most recent history. Suggest those that I haven't trained in a while. " +
	"When choosing weight for the exercise - take the weight I have done with this exercise in the last historic session and add 1-3 kg. " +
	"Give me suggestion in the following format where every set starts from the new line. " +
	"In the beginning, tell me briefly and without too much details what I trained last time, and where the focus of today's training should be. " +
	"Then give me warm-up exercises. The title saying **Warm-up & Stretching** must be in bold font. " +
	"Keep one blank line between warm-up and main exercises. The title saying **Main Exercises** must be in bold font. " +
	"Then give me today's program. Indicate which part of the body it works, max number of sets, max number of repetitions and max weight. " +
	"List main exercises as single line for each out of 5. For example: Chest - Bench press: ramp to 80kg, 6 reps, 5 sets.\n"

const defaultWodPrompt = "You are a professional CrossFit coach, and I am an athlete with 2 years of experience in CrossFit. " +
	"Give me a WOD exercise program following the typical structure of a WOD. Include Rx weights and time for exercises where appropriate. " +
	"The weights should be in kilograms. The time should be in minutes. " +
	"Please provide today's WOD program in exactly 4 complete blocks. Each block should start with 'Block X:' where X is the block number. " +
	"Each block must include the following details: Block title, Exercises, Time. The first block is always the warm-up. " +
	"The suggestion must take into account my last saved WOD workout below, targeting different muscle groups and considering previous difficulty feedback. " +
	"To understand the difficulty feedback, look for one of the following keywords: too easy, easy, perfect, too difficult.\n"

func DefaultPrompts() Prompts {
	return Prompts{GymPrompt: defaultGymPrompt, WodPrompt: defaultWodPrompt}
}

// PromptFile persists Prompts as a small JSON document on disk.
type PromptFile struct {
	path string
}

func NewPromptFile(path string) *PromptFile {
	return &PromptFile{path: path}
}

func (f *PromptFile) Path() string { return f.path }

// Load reads the templates, writing the defaults first when the file is missing.
func (f *PromptFile) Load() (Prompts, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Prompt file %s not found, writing defaults", f.path)
		defaults := DefaultPrompts()
		if err := f.Save(defaults); err != nil {
			return Prompts{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompt file %s: %w", f.path, err)
	}

	var p Prompts
	if err := json.Unmarshal(data, &p); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse prompt file %s: %w", f.path, err)
	}
	return p, nil
}

// Save overwrites both templates.
func (f *PromptFile) Save(p Prompts) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode prompts: %w", err)
	}
	if err := os.WriteFile(f.path, bytes.TrimRight(buf.Bytes(), "\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write prompt file %s: %w", f.path, err)
	}
	return nil
}
