package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flux/internal/app"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the measurement cache",
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved cache file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		fmt.Println(a.Store().Path())
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached measurement and its age",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		store := a.Store()

		state, age, reason := store.Freshness(time.Now(), a.TTL())
		if reason != nil {
			return reason
		}

		m, err := store.Load()
		if err != nil {
			return err
		}

		fmt.Printf("download: %d Mbps\n", m.DownloadMbps)
		fmt.Printf("latency:  %d ms\n", m.LatencyMs)
		if m.DownloadedMB > 0 {
			fmt.Printf("downloaded: %d MB\n", m.DownloadedMB)
		}
		if m.UserLocation != "" {
			fmt.Printf("location: %s\n", m.UserLocation)
		}
		if m.UserIP != "" {
			fmt.Printf("ip:       %s\n", m.UserIP)
		}
		fmt.Printf("age:      %s (%s)\n", age.Round(time.Second), state)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cache file so the next run probes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		path := a.Store().Path()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	},
}

func newApp() (*app.App, error) {
	return app.New(configPath(), app.Options{Verbose: flagVerbose})
}

func init() {
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
