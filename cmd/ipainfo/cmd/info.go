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
	"encoding/json"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/colors"
	"github.com/blacktop/ipainfo/internal/commands/info"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	infoCmd.Flags().BoolP("yaml", "y", false, "Output as YAML")
	infoCmd.Flags().String("check-os", "", "Check if the app runs on this iOS version")
	infoCmd.Flags().BoolP("provision", "p", false, "Include embedded provisioning profile summary")
	infoCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	viper.BindPFlag("info.json", infoCmd.Flags().Lookup("json"))
	viper.BindPFlag("info.yaml", infoCmd.Flags().Lookup("yaml"))
	viper.BindPFlag("info.check-os", infoCmd.Flags().Lookup("check-os"))
	viper.BindPFlag("info.provision", infoCmd.Flags().Lookup("provision"))
}

// printJSON prints v as indented JSON, highlighted when colors are enabled
func printJSON(v any) error {
	dat, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %v", err)
	}
	if colors.Enabled() {
		if err := quick.Highlight(os.Stdout, string(dat)+"\n", "json", "terminal256", "nord"); err != nil {
			return fmt.Errorf("failed to highlight json: %v", err)
		}
		return nil
	}
	fmt.Println(string(dat))
	return nil
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:           "info <IPA>",
	Aliases:       []string{"i"},
	Short:         "Display IPA metadata",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# Show app metadata
		❯ ipainfo info Example.ipa

		# Output as JSON and pipe to jq
		❯ ipainfo info Example.ipa --json --no-color | jq .bundleIndentifier

		# Check if the app installs on iOS 15.0 and show its provisioning profile
		❯ ipainfo info Example.ipa --check-os 15.0 --provision
	`),
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		i, err := openIPA(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse IPA: %w", err)
		}

		out, err := info.Get(i, &info.Config{
			CheckOS:   viper.GetString("info.check-os"),
			Provision: viper.GetBool("info.provision"),
		})
		if err != nil {
			return err
		}

		switch {
		case viper.GetBool("info.json"):
			return printJSON(out)
		case viper.GetBool("info.yaml"):
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("failed to marshal yaml: %v", err)
			}
		default:
			fmt.Print(out)
		}

		return nil
	},
}
