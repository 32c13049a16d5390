/*
Copyright © 2026 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/colors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheLsCmd)
	cacheCmd.AddCommand(cacheCleanCmd)

	cacheLsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	viper.BindPFlag("cache-ls.json", cacheLsCmd.Flags().Lookup("json"))
}

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the extraction cache",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// cacheLsCmd represents the cache ls command
var cacheLsCmd = &cobra.Command{
	Use:           "ls",
	Aliases:       []string{"list"},
	Short:         "List cached extractions",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# List cached extractions
		❯ ipainfo cache ls

		# List extractions of a different cache folder
		❯ ipainfo cache ls --cache /tmp/ipa-info
	`),
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		c, err := openCache()
		if err != nil {
			return err
		}

		entries, err := c.List()
		if err != nil {
			return err
		}

		if viper.GetBool("cache-ls.json") {
			return printJSON(entries)
		}

		if len(entries) == 0 {
			log.Infof("No cached extractions in %s", c.Root())
			return nil
		}

		var total int64
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FINGERPRINT\tSIZE\tMODIFIED\tSTATUS")
		for _, e := range entries {
			status := colors.Good("complete")
			if !e.Complete {
				status = colors.Warn("partial")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Fingerprint, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime), status)
			total += e.Size
		}
		w.Flush()
		fmt.Printf("\n%d entries, %s total\n", len(entries), humanize.Bytes(uint64(total)))

		return nil
	},
}

// cacheCleanCmd represents the cache clean command
var cacheCleanCmd = &cobra.Command{
	Use:           "clean",
	Aliases:       []string{"rm"},
	Short:         "Remove cached extractions",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		c, err := openCache()
		if err != nil {
			return err
		}

		n, err := c.Clean()
		if err != nil {
			return err
		}

		log.Infof("Removed %d cached extraction(s) from %s", n, c.Root())
		return nil
	},
}
