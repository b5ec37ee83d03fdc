package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                 _           __ _`, "#22d3ee"},
	{`   ___ __ _  ___| |__   ___ / _| | _____      __`, "#38bdf8"},
	{`  / __/ _' |/ __| '_ \ / _ \ |_| |/ _ \ \ /\ / /`, "#60a5fa"},
	{` | (_| (_| | (__| | | |  __/  _| | (_) \ V  V /`, "#818cf8"},
	{`  \___\__,_|\___|_| |_|\___|_| |_|\___/ \_/\_/`, "#a78bfa"},
}

// PrintBanner writes the cacheflow banner, coloured for the terminal profile
// of out.
func PrintBanner(out io.Writer) {
	p := termenv.NewOutput(out).ColorProfile()

	fmt.Fprintln(out)
	for _, l := range bannerLines {
		fmt.Fprintln(out, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(out)
}
