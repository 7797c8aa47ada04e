package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect site content",
}

var contentCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the site content and license",
	Long: `Validate the site content and license that serve would use.

Exits non-zero and lists every problem if the content is invalid.`,
	RunE: runContentCheck,
}

func init() {
	contentCmd.AddCommand(contentCheckCmd)
	rootCmd.AddCommand(contentCmd)
}

func runContentCheck(cmd *cobra.Command, args []string) error {
	siteContent, _, err := loadContent()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", siteContent.Product.Name, siteContent.Product.Version)
	fmt.Fprintf(out, "  features:  %d\n", len(siteContent.Features))
	for _, d := range siteContent.Downloads {
		size := "unknown size"
		if d.Size > 0 {
			size = humanize.Bytes(d.Size)
		}
		fmt.Fprintf(out, "  download:  %s (%s)\n", d.Name, size)
	}
	fmt.Fprintf(out, "  groups:    %d (%d open)\n", len(siteContent.Groups), len(siteContent.OpenGroups()))
	fmt.Fprintln(out, "ok")
	return nil
}
