package progress

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// DetectTerminalCapabilities inspects the stream packforge draws stage
// progress on, normally os.Stderr so stdout stays clean for the summary.
//
// A redirected stream gets no color, no Unicode and a zero width. On a
// terminal, NO_COLOR drops color, and PACKFORGE_ASCII=1 or TERM=dumb fall
// back to the bracketed ASCII markers used in CI logs.
func DetectTerminalCapabilities(stream *os.File) TerminalCapabilities {
	fd := int(stream.Fd())
	if !term.IsTerminal(fd) {
		return TerminalCapabilities{}
	}

	caps := TerminalCapabilities{
		IsTTY:           true,
		SupportsColor:   os.Getenv("NO_COLOR") == "",
		SupportsUnicode: !asciiOnly(),
	}
	if cols, _, err := term.GetSize(fd); err == nil {
		caps.Width = cols
	}
	return caps
}

func asciiOnly() bool {
	if os.Getenv("PACKFORGE_ASCII") == "1" {
		return true
	}
	return strings.EqualFold(os.Getenv("TERM"), "dumb")
}

// stage markers, indexed by whether the stream renders Unicode
var (
	unicodeMarkers = ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14} // braille dots
	asciiMarkers   = ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9}
)

// SelectSymbols picks the stage markers and spinner frames for caps.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return unicodeMarkers
	}
	return asciiMarkers
}
