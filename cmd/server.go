package cmd

import (
	"arifmusic/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the ArifMusic API server",
	Long:  `Starts the HTTP API serving accounts, playlists, watchlists, follows and media.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
