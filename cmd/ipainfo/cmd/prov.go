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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(provCmd)

	provCmd.Flags().BoolP("json", "j", false, "Dump the full profile as JSON")
	viper.BindPFlag("prov.json", provCmd.Flags().Lookup("json"))
}

// provCmd represents the prov command
var provCmd = &cobra.Command{
	Use:           "prov <IPA>",
	Aliases:       []string{"mobileprovision"},
	Short:         "Display the embedded provisioning profile",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# Show the provisioning profile summary
		❯ ipainfo prov Example.ipa

		# Dump all profile keys as JSON
		❯ ipainfo prov Example.ipa --json
	`),
	RunE: func(cmd *cobra.Command, args []string) error {

		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		i, err := openIPA(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse IPA: %w", err)
		}

		prov, ok := i.Provision()
		if !ok {
			log.Warn("IPA has no embedded provisioning profile")
			return nil
		}

		if viper.GetBool("prov.json") {
			return printJSON(prov.Raw)
		}

		fmt.Println(prov.ProvisioningProfile)
		return nil
	},
}
