// Package main is the entry point for the kaynstats CLI, which reports a
// player's ranked Blue and Red Kayn pick and win rates from the Riot API.
package main

import "github.com/pable/kaynstats/cmd"

func main() {
	cmd.Execute()
}
