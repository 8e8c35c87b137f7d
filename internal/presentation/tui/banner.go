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
	{`  ____              _   _ _     _   `, "#34d399"},
	{` / ___| _ __   ___ | |_| (_)___| |_ `, "#2dd4bf"},
	{` \___ \| '_ \ / _ \| __| | / __| __|`, "#22d3ee"},
	{`  ___) | |_) | (_) | |_| | \__ \ |_ `, "#38bdf8"},
	{` |____/| .__/ \___/ \__|_|_|___/\__|`, "#60a5fa"},
	{`       |_|   list your parking space`, "#818cf8"},
}

// PrintBanner writes the spotlist banner to w, coloured for w's terminal profile.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
