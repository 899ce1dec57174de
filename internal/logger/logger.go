// Package logger provides the console output used across the broker:
// tagged leveled lines plus a few decorative helpers for startup.
package logger

import (
	"fmt"
	"time"
)

// ANSI color codes. Terminals that don't support them just print the escapes;
// acceptable for a local tool.
const (
	colReset  = "\033[0m"
	colDim    = "\033[2m"
	colCyan   = "\033[36m"
	colGreen  = "\033[32m"
	colYellow = "\033[33m"
	colRed    = "\033[31m"
	colBold   = "\033[1m"
)

func line(color, level, tag, msg string) {
	ts := time.Now().Format("15:04:05")
	fmt.Printf("%s%s%s %s%-7s%s %s[%s]%s %s\n",
		colDim, ts, colReset,
		color, level, colReset,
		colBold, tag, colReset,
		msg)
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	line(colCyan, "INFO", tag, msg)
}

// Success logs a success message under a component tag.
func Success(tag, msg string) {
	line(colGreen, "OK", tag, msg)
}

// Warn logs a warning under a component tag.
func Warn(tag, msg string) {
	line(colYellow, "WARN", tag, msg)
}

// Error logs an error under a component tag.
func Error(tag, msg string) {
	line(colRed, "ERROR", tag, msg)
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%s", colBold, colCyan)
	fmt.Println(`  ___ _            ___           _`)
	fmt.Println(` / __| |_ __ _ _ _| _ )_ _ ___ | |_____ _ _`)
	fmt.Println(` \__ \  _/ _' | '_| _ \ '_/ _ \| / / -_) '_|`)
	fmt.Println(` |___/\__\__,_|_| |___/_| \___/|_\_\___|_|`)
	fmt.Printf("%s", colReset)
	fmt.Printf(" %slocal data broker economy (%s)%s\n\n", colDim, version, colReset)
}

// Section prints a visual separator with a title.
func Section(title string) {
	fmt.Printf("\n%s── %s %s\n", colBold, title, colReset)
}

// Stats prints a key/value stat line.
func Stats(key string, value interface{}) {
	fmt.Printf("   %s%-24s%s %v\n", colDim, key, colReset, value)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("\n %s▶ Listening on http://%s%s\n\n", colGreen, addr, colReset)
}
