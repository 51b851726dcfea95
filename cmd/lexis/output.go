package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kalambet/lexis/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

// printEntries renders dictionary entries for the terminal.
func printEntries(w io.Writer, infos []model.WordInfo) {
	for i, wi := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		head := colorize(colorBold, wi.Word)
		if wi.Phonetic != "" {
			head += " " + wi.Phonetic
		}
		if wi.Liked {
			head += " " + colorize(colorYellow, "★")
		}
		fmt.Fprintln(w, head)

		for _, m := range wi.Meanings {
			fmt.Fprintf(w, "  %s\n", colorize(colorCyan, m.PartOfSpeech))
			for n, d := range m.Definitions {
				fmt.Fprintf(w, "    %d. %s\n", n+1, d.Text)
				if d.Example != "" {
					fmt.Fprintf(w, "       %q\n", d.Example)
				}
			}
			if len(m.Synonyms) > 0 {
				fmt.Fprintf(w, "    synonyms: %s\n", strings.Join(m.Synonyms, ", "))
			}
			if len(m.Antonyms) > 0 {
				fmt.Fprintf(w, "    antonyms: %s\n", strings.Join(m.Antonyms, ", "))
			}
		}
	}
}

func printWords(w io.Writer, words []string, empty string) {
	if len(words) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, word := range words {
		fmt.Fprintln(w, word)
	}
}
