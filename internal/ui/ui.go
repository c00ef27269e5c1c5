// Package ui drives interactive variant selection through fzf. Items are
// piped to fzf via stdin as plain text, never through shell-interpreted
// preview strings.
package ui

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"tikrip/internal/media"
)

// SelectVariant presents the post's video variants and returns the index
// of the one the user picked. Watermark-free variants are listed first.
func SelectVariant(v *media.VideoMedia) (media.Variant, error) {
	if v == nil {
		return media.Variant{}, fmt.Errorf("post has no video media")
	}

	var variants []media.Variant
	var labels []string
	for _, variant := range v.NoWatermark {
		variants = append(variants, variant)
		labels = append(labels, variantLabel(variant, "no watermark"))
	}
	for _, variant := range v.WithWatermark {
		variants = append(variants, variant)
		labels = append(labels, variantLabel(variant, "watermarked"))
	}
	if len(variants) == 0 {
		return media.Variant{}, fmt.Errorf("post has no downloadable variants")
	}

	idx, err := pick("Select quality", labels)
	if err != nil {
		return media.Variant{}, err
	}
	return variants[idx], nil
}

func variantLabel(v media.Variant, kind string) string {
	quality := v.Quality
	if quality == "" {
		quality = "unknown"
	}
	label := fmt.Sprintf("%s  %s", quality, kind)
	if v.Size != "" {
		label += "  " + v.Size
	}
	return label
}

// Confirm asks the user a yes/no question via fzf.
func Confirm(prompt string) (bool, error) {
	idx, err := pick(prompt, []string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

// pick runs fzf over numbered items and returns the chosen index. The
// index travels in a hidden first tab-separated field so display text
// never has to round-trip.
func pick(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return -1, fmt.Errorf("fzf not found in PATH: %w", err)
	}

	var input strings.Builder
	for i, item := range items {
		fmt.Fprintf(&input, "%d\t%s\n", i, item)
	}

	cmd := exec.Command(fzfPath,
		"--prompt", prompt+" > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..",
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	)
	cmd.Stdin = strings.NewReader(input.String())
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 130 {
			return -1, fmt.Errorf("selection cancelled")
		}
		return -1, fmt.Errorf("fzf failed: %w", err)
	}

	selected := strings.TrimSpace(stdout.String())
	if selected == "" {
		return -1, fmt.Errorf("no selection made")
	}

	parts := strings.SplitN(selected, "\t", 2)
	var idx int
	if _, err := fmt.Sscanf(parts[0], "%d", &idx); err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}
	if idx < 0 || idx >= len(items) {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}

	return idx, nil
}
