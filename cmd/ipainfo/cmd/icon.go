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
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(iconCmd)

	iconCmd.Flags().StringP("output", "o", "", "Folder to write the icon to")
	iconCmd.Flags().IntP("size", "s", 0, "Resize icon to fit SIZExSIZE (0 keeps original)")
	iconCmd.MarkFlagDirname("output")
	viper.BindPFlag("icon.output", iconCmd.Flags().Lookup("output"))
	viper.BindPFlag("icon.size", iconCmd.Flags().Lookup("size"))
}

// iconCmd represents the icon command
var iconCmd = &cobra.Command{
	Use:           "icon <IPA>",
	Short:         "Extract the app icon",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# Write the app icon to the current directory
		❯ ipainfo icon Example.ipa

		# Write a 64x64 thumbnail to /tmp
		❯ ipainfo icon Example.ipa --size 64 --output /tmp
	`),
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		size := viper.GetInt("icon.size")
		if size < 0 {
			return fmt.Errorf("--size must be positive")
		}

		i, err := openIPA(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse IPA: %w", err)
		}

		icon, ok := i.Icon()
		if !ok {
			return fmt.Errorf("no usable app icon found in %s", filepath.Base(args[0]))
		}

		binfo, err := i.BasicInfo()
		if err != nil {
			return err
		}

		name := binfo.BundleIdentifier + ".png"
		if size > 0 {
			name = fmt.Sprintf("%s_%dx%d.png", binfo.BundleIdentifier, size, size)
		}
		output := viper.GetString("icon.output")
		if output != "" {
			if err := os.MkdirAll(output, 0o750); err != nil {
				return fmt.Errorf("failed to create output folder: %v", err)
			}
		}
		fname := filepath.Join(output, utils.ReplaceWhitespace(strings.TrimSpace(name)))

		if err := icon.Save(fname, size); err != nil {
			return err
		}
		utils.Indent(log.Info, 2)(fmt.Sprintf("Created %s", fname))

		return nil
	},
}
