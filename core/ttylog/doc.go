// Package ttylog records what a session shows on its terminal and plays it
// back. Recordings are stored in the asciicast v2 format so they can also be
// played with asciinema.
package ttylog
